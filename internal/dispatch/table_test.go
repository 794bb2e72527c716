package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/internal/resolve"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Every shape the resolver can produce must have exactly one table entry,
// and the table must not register shapes the resolver cannot produce.
func TestTableCoversResolvedShapes(t *testing.T) {
	for _, family := range resolve.Families {
		shapes := resolve.Shapes(family)
		assert.Len(t, All(family), len(shapes), "family %s", family)
		for _, shape := range shapes {
			_, err := Lookup(family, shape)
			assert.NoError(t, err, "family %s shape %s", family, shape)
		}
	}
}

// Variant names are unique across all families: each resolves to exactly
// one remote method.
func TestVariantNamesUnique(t *testing.T) {
	seen := map[string]resolve.Family{}
	for _, family := range resolve.Families {
		for _, entry := range All(family) {
			prev, dup := seen[entry.Descriptor.Name]
			assert.False(t, dup, "name %s registered for both %s and %s",
				entry.Descriptor.Name, prev, family)
			seen[entry.Descriptor.Name] = family
		}
	}
}

func TestVariantNames(t *testing.T) {
	tests := []struct {
		family resolve.Family
		shape  resolve.Shape
		name   string
		params []Param
	}{
		{
			family: resolve.FamilyGet,
			shape:  resolve.Shape{Key: resolve.SlotScalar, Record: resolve.SlotScalar},
			name:   "getKeyRecord",
			params: []Param{ParamKey, ParamRecord},
		},
		{
			family: resolve.FamilySelect,
			shape: resolve.Shape{
				Key:    resolve.SlotCollection,
				Record: resolve.SlotCollection,
				Time:   resolve.TimeInstant,
			},
			name:   "selectKeysRecordsTime",
			params: []Param{ParamKeys, ParamRecords, ParamTimestamp},
		},
		{
			family: resolve.FamilyGet,
			shape:  resolve.Shape{Criteria: resolve.SlotScalar, Time: resolve.TimePhrase},
			name:   "getCclTimestr",
			params: []Param{ParamCriteria, ParamTimestamp},
		},
		{
			family: resolve.FamilyAdd,
			shape:  resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar},
			name:   "addKeyValue",
			params: []Param{ParamKey, ParamValue},
		},
		{
			family: resolve.FamilySet,
			shape: resolve.Shape{
				Key:      resolve.SlotScalar,
				Value:    resolve.SlotScalar,
				Criteria: resolve.SlotScalar,
			},
			name:   "setKeyValueCcl",
			params: []Param{ParamKey, ParamValue, ParamCriteria},
		},
		{
			family: resolve.FamilyAudit,
			shape: resolve.Shape{
				Key:    resolve.SlotScalar,
				Record: resolve.SlotScalar,
				Range:  resolve.RangeStartEndInstant,
			},
			name:   "auditKeyRecordStartEnd",
			params: []Param{ParamKey, ParamRecord, ParamStart, ParamEnd},
		},
		{
			family: resolve.FamilyDescribe,
			shape:  resolve.Shape{Record: resolve.SlotCollection, Time: resolve.TimePhrase},
			name:   "describeRecordsTimestr",
			params: []Param{ParamRecords, ParamTimestamp},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Lookup(tt.family, tt.shape)
			require.NoError(t, err)
			assert.Equal(t, tt.name, desc.Name)
			assert.Equal(t, tt.params, desc.Params)
		})
	}
}

// Each entry's parameter list must mirror its shape: one parameter per
// populated slot, none for absent slots.
func TestParamsMatchShape(t *testing.T) {
	for _, family := range resolve.Families {
		for _, entry := range All(family) {
			shape, params := entry.Shape, entry.Descriptor.Params

			assert.Equal(t, shape.Key == resolve.SlotScalar, contains(params, ParamKey),
				"%s: key slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Key == resolve.SlotCollection, contains(params, ParamKeys),
				"%s: keys slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Record == resolve.SlotScalar, contains(params, ParamRecord),
				"%s: record slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Record == resolve.SlotCollection, contains(params, ParamRecords),
				"%s: records slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Criteria == resolve.SlotScalar, contains(params, ParamCriteria),
				"%s: criteria slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Value == resolve.SlotScalar, contains(params, ParamValue),
				"%s: value slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Time != resolve.TimeNone, contains(params, ParamTimestamp),
				"%s: timestamp slot", entry.Descriptor.Name)
			assert.Equal(t, shape.Range != resolve.RangeNone, contains(params, ParamStart),
				"%s: start slot", entry.Descriptor.Name)

			hasEnd := shape.Range == resolve.RangeStartEndInstant || shape.Range == resolve.RangeStartEndPhrase
			assert.Equal(t, hasEnd, contains(params, ParamEnd), "%s: end slot", entry.Descriptor.Name)
		}
	}
}

func contains(params []Param, p Param) bool {
	for _, q := range params {
		if q == p {
			return true
		}
	}
	return false
}

func TestLookupMiss(t *testing.T) {
	_, err := Lookup(resolve.FamilyGet, resolve.Shape{})
	assert.ErrorIs(t, err, types.ErrUnsupportedShape)

	_, err = Lookup(resolve.FamilyAdd, resolve.Shape{Key: resolve.SlotCollection, Value: resolve.SlotScalar})
	assert.ErrorIs(t, err, types.ErrUnsupportedShape)
}
