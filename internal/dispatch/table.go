package dispatch

import (
	"fmt"

	"github.com/mesh-intelligence/strata/internal/resolve"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Param names one ordered parameter slot of a remote operation variant.
type Param int

const (
	ParamKey Param = iota
	ParamKeys
	ParamRecord
	ParamRecords
	ParamCriteria
	ParamValue
	ParamTimestamp
	ParamStart
	ParamEnd
)

func (p Param) String() string {
	switch p {
	case ParamKey:
		return "key"
	case ParamKeys:
		return "keys"
	case ParamRecord:
		return "record"
	case ParamRecords:
		return "records"
	case ParamCriteria:
		return "criteria"
	case ParamValue:
		return "value"
	case ParamTimestamp:
		return "timestamp"
	case ParamStart:
		return "start"
	case ParamEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Descriptor identifies one remote operation variant.
type Descriptor struct {
	Family resolve.Family
	Name   string
	Params []Param
}

// Entry pairs a shape with its descriptor, for table iteration.
type Entry struct {
	Shape      resolve.Shape
	Descriptor Descriptor
}

var table = map[resolve.Family]map[resolve.Shape]Descriptor{}

func reg(f resolve.Family, s resolve.Shape, name string, params ...Param) {
	byShape, ok := table[f]
	if !ok {
		byShape = map[resolve.Shape]Descriptor{}
		table[f] = byShape
	}
	if _, dup := byShape[s]; dup {
		panic(fmt.Sprintf("dispatch: duplicate entry for %s %s", f, s))
	}
	byShape[s] = Descriptor{Family: f, Name: name, Params: params}
}

// Lookup returns the descriptor for the family and shape. A miss wraps
// types.ErrUnsupportedShape: the resolver produced a shape the table does
// not cover, which is an internal invariant violation.
func Lookup(f resolve.Family, s resolve.Shape) (Descriptor, error) {
	d, ok := table[f][s]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s %s", types.ErrUnsupportedShape, f, s)
	}
	return d, nil
}

// All returns every registered entry for the family.
func All(f resolve.Family) []Entry {
	entries := make([]Entry, 0, len(table[f]))
	for s, d := range table[f] {
		entries = append(entries, Entry{Shape: s, Descriptor: d})
	}
	return entries
}

// readShape builds the shape for a read-style variant.
func readShape(key, record, criteria resolve.Slot, t resolve.TimeSlot) resolve.Shape {
	return resolve.Shape{Key: key, Record: record, Criteria: criteria, Time: t}
}

// regReadGrid registers the full key x selector x time grid for a read
// family (get, select). Names follow the wire convention: base verb, then
// the populated slots, with Time/Timestr distinguishing instant from
// phrase timestamps.
func regReadGrid(f resolve.Family, verb string) {
	keyAxis := []struct {
		slot resolve.Slot
		name string
		p    []Param
	}{
		{resolve.SlotAbsent, "", nil},
		{resolve.SlotScalar, "Key", []Param{ParamKey}},
		{resolve.SlotCollection, "Keys", []Param{ParamKeys}},
	}
	selAxis := []struct {
		record   resolve.Slot
		criteria resolve.Slot
		name     string
		p        []Param
	}{
		{resolve.SlotScalar, resolve.SlotAbsent, "Record", []Param{ParamRecord}},
		{resolve.SlotCollection, resolve.SlotAbsent, "Records", []Param{ParamRecords}},
		{resolve.SlotAbsent, resolve.SlotScalar, "Ccl", []Param{ParamCriteria}},
	}
	timeAxis := []struct {
		slot resolve.TimeSlot
		name string
		p    []Param
	}{
		{resolve.TimeNone, "", nil},
		{resolve.TimeInstant, "Time", []Param{ParamTimestamp}},
		{resolve.TimePhrase, "Timestr", []Param{ParamTimestamp}},
	}
	for _, k := range keyAxis {
		for _, sel := range selAxis {
			for _, t := range timeAxis {
				name := verb + k.name + sel.name + t.name
				var params []Param
				params = append(params, k.p...)
				params = append(params, sel.p...)
				params = append(params, t.p...)
				reg(f, readShape(k.slot, sel.record, sel.criteria, t.slot), name, params...)
			}
		}
	}
}

func init() {
	regReadGrid(resolve.FamilyGet, "get")
	regReadGrid(resolve.FamilySelect, "select")

	kv := resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar}

	// add: value under key, optionally into existing record(s).
	reg(resolve.FamilyAdd, kv, "addKeyValue", ParamKey, ParamValue)
	reg(resolve.FamilyAdd,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotScalar},
		"addKeyValueRecord", ParamKey, ParamValue, ParamRecord)
	reg(resolve.FamilyAdd,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotCollection},
		"addKeyValueRecords", ParamKey, ParamValue, ParamRecords)

	// set: replace all values under key in the selected record(s).
	reg(resolve.FamilySet,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotScalar},
		"setKeyValueRecord", ParamKey, ParamValue, ParamRecord)
	reg(resolve.FamilySet,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotCollection},
		"setKeyValueRecords", ParamKey, ParamValue, ParamRecords)
	reg(resolve.FamilySet,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Criteria: resolve.SlotScalar},
		"setKeyValueCcl", ParamKey, ParamValue, ParamCriteria)

	// remove: delete one value under key from the selected record(s).
	reg(resolve.FamilyRemove,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotScalar},
		"removeKeyValueRecord", ParamKey, ParamValue, ParamRecord)
	reg(resolve.FamilyRemove,
		resolve.Shape{Key: resolve.SlotScalar, Value: resolve.SlotScalar, Record: resolve.SlotCollection},
		"removeKeyValueRecords", ParamKey, ParamValue, ParamRecords)

	// audit: change history for a record, optionally narrowed to a key
	// and a time range.
	for _, k := range []struct {
		slot resolve.Slot
		name string
		p    []Param
	}{
		{resolve.SlotAbsent, "", nil},
		{resolve.SlotScalar, "Key", []Param{ParamKey}},
	} {
		base := resolve.Shape{Key: k.slot, Record: resolve.SlotScalar}
		prefix := "audit" + k.name + "Record"
		pre := append(append([]Param{}, k.p...), ParamRecord)

		reg(resolve.FamilyAudit, base, prefix, pre...)

		s := base
		s.Range = resolve.RangeStartInstant
		reg(resolve.FamilyAudit, s, prefix+"Start", append(append([]Param{}, pre...), ParamStart)...)

		s = base
		s.Range = resolve.RangeStartPhrase
		reg(resolve.FamilyAudit, s, prefix+"Startstr", append(append([]Param{}, pre...), ParamStart)...)

		s = base
		s.Range = resolve.RangeStartEndInstant
		reg(resolve.FamilyAudit, s, prefix+"StartEnd", append(append([]Param{}, pre...), ParamStart, ParamEnd)...)

		s = base
		s.Range = resolve.RangeStartEndPhrase
		reg(resolve.FamilyAudit, s, prefix+"StartstrEndstr", append(append([]Param{}, pre...), ParamStart, ParamEnd)...)
	}

	// describe: keys present in the selected record(s).
	for _, r := range []struct {
		slot resolve.Slot
		name string
		p    Param
	}{
		{resolve.SlotScalar, "Record", ParamRecord},
		{resolve.SlotCollection, "Records", ParamRecords},
	} {
		for _, t := range []struct {
			slot resolve.TimeSlot
			name string
			p    []Param
		}{
			{resolve.TimeNone, "", nil},
			{resolve.TimeInstant, "Time", []Param{ParamTimestamp}},
			{resolve.TimePhrase, "Timestr", []Param{ParamTimestamp}},
		} {
			s := resolve.Shape{Record: r.slot, Time: t.slot}
			reg(resolve.FamilyDescribe, s, "describe"+r.name+t.name,
				append([]Param{r.p}, t.p...)...)
		}
	}
}
