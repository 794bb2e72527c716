package strata

import (
	"fmt"

	"github.com/mesh-intelligence/strata/internal/resolve"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Args accumulates the arguments of one logical operation. Each setter
// fills one optional slot; the resolver validates the combination when the
// operation is invoked. The zero value has every slot absent.
type Args struct {
	raw resolve.Arguments
}

// NewArgs returns an empty argument set.
func NewArgs() *Args { return &Args{} }

// Key selects a single key.
func (a *Args) Key(key string) *Args {
	a.raw.Key = &key
	return a
}

// Keys selects multiple keys.
func (a *Args) Keys(keys ...string) *Args {
	a.raw.Keys = append([]string(nil), keys...)
	return a
}

// Record selects a single record.
func (a *Args) Record(record int64) *Args {
	a.raw.Record = &record
	return a
}

// Records selects multiple records.
func (a *Args) Records(records ...int64) *Args {
	a.raw.Records = append([]int64(nil), records...)
	return a
}

// Criteria selects records by a query expression.
func (a *Args) Criteria(ccl string) *Args {
	a.raw.Criteria = &ccl
	return a
}

// Selector fills the record slot when v is an integer type and the
// criteria slot otherwise, treating the value as criteria text.
func (a *Args) Selector(v any) *Args {
	switch x := v.(type) {
	case int:
		return a.Record(int64(x))
	case int8:
		return a.Record(int64(x))
	case int16:
		return a.Record(int64(x))
	case int32:
		return a.Record(int64(x))
	case int64:
		return a.Record(x)
	case uint:
		return a.Record(int64(x))
	case uint32:
		return a.Record(int64(x))
	case uint64:
		return a.Record(int64(x))
	case types.Link:
		return a.Record(int64(x))
	case string:
		return a.Criteria(x)
	default:
		return a.Criteria(fmt.Sprint(v))
	}
}

// Value sets the value to write. Native Go values are converted with
// types.FromAny; unknown types are carried as their string representation.
func (a *Args) Value(v any) *Args {
	val := types.FromAny(v)
	a.raw.Value = &val
	return a
}

// Time sets the point in time for a time-travel read.
func (a *Args) Time(ts types.Timestamp) *Args {
	a.raw.Time = &ts
	return a
}

// Start sets the lower bound of an audit range.
func (a *Args) Start(ts types.Timestamp) *Args {
	a.raw.Start = &ts
	return a
}

// End sets the upper bound of an audit range.
func (a *Args) End(ts types.Timestamp) *Args {
	a.raw.End = &ts
	return a
}

func (a *Args) arguments() resolve.Arguments {
	if a == nil {
		return resolve.Arguments{}
	}
	return a.raw
}
