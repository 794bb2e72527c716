package resolve

import (
	"fmt"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Arguments holds the raw input to one logical operation, one explicit
// optional slot per parameter. A nil pointer or empty collection means
// absent. A slot is either scalar or collection, never both; the key/keys
// and record/records pairs are distinct slots so that supplying both is
// detectable as a caller error.
type Arguments struct {
	Key      *string
	Keys     []string
	Record   *int64
	Records  []int64
	Criteria *string
	Value    *types.Value
	Time     *types.Timestamp
	Start    *types.Timestamp
	End      *types.Timestamp
}

// Resolve classifies args into the canonical shape for the given family.
// It is pure: same arguments, same shape. Errors wrap
// types.ErrAmbiguousArguments when mutually exclusive slots are populated
// and types.ErrMissingRequiredArguments when no registered variant matches.
func Resolve(f Family, args Arguments) (Shape, error) {
	var s Shape

	// Mutually exclusive pairs first, regardless of family.
	if args.Key != nil && len(args.Keys) > 0 {
		return s, fmt.Errorf("%w: key and keys", types.ErrAmbiguousArguments)
	}
	if args.Record != nil && len(args.Records) > 0 {
		return s, fmt.Errorf("%w: record and records", types.ErrAmbiguousArguments)
	}
	if args.Criteria != nil && (args.Record != nil || len(args.Records) > 0) {
		return s, fmt.Errorf("%w: criteria and record selectors", types.ErrAmbiguousArguments)
	}

	switch {
	case args.Key != nil:
		s.Key = SlotScalar
	case len(args.Keys) > 0:
		s.Key = SlotCollection
	}
	switch {
	case args.Record != nil:
		s.Record = SlotScalar
	case len(args.Records) > 0:
		s.Record = SlotCollection
	}
	if args.Criteria != nil {
		s.Criteria = SlotScalar
	}
	if args.Value != nil {
		s.Value = SlotScalar
	}

	var err error
	if s.Time, err = timeSlot(args.Time); err != nil {
		return Shape{}, err
	}
	if s.Range, err = rangeSlot(args.Start, args.End); err != nil {
		return Shape{}, err
	}

	if err := validate(f, s); err != nil {
		return Shape{}, err
	}
	return s, nil
}

func timeSlot(t *types.Timestamp) (TimeSlot, error) {
	if t == nil {
		return TimeNone, nil
	}
	if t.Kind() == types.TimePhrase {
		return TimePhrase, nil
	}
	return TimeInstant, nil
}

func rangeSlot(start, end *types.Timestamp) (RangeSlot, error) {
	if start == nil && end == nil {
		return RangeNone, nil
	}
	if start == nil {
		return RangeNone, fmt.Errorf("%w: end requires start", types.ErrMissingRequiredArguments)
	}
	phrase := start.Kind() == types.TimePhrase
	if end == nil {
		if phrase {
			return RangeStartPhrase, nil
		}
		return RangeStartInstant, nil
	}
	if (end.Kind() == types.TimePhrase) != phrase {
		return RangeNone, fmt.Errorf("%w: start and end of different time kinds", types.ErrAmbiguousArguments)
	}
	if phrase {
		return RangeStartEndPhrase, nil
	}
	return RangeStartEndInstant, nil
}

// validate enforces per-family slot requirements. The failure messages name
// the minimum combination the family accepts.
func validate(f Family, s Shape) error {
	selector := s.Record != SlotAbsent || s.Criteria != SlotAbsent

	switch f {
	case FamilyGet, FamilySelect:
		if s.Value != SlotAbsent {
			return reject(f, "a value")
		}
		if s.Range != RangeNone {
			return reject(f, "a start/end range")
		}
		if !selector {
			return fmt.Errorf("%w: %s requires criteria or record", types.ErrMissingRequiredArguments, f)
		}
	case FamilyAdd:
		if s.Key != SlotScalar || s.Value != SlotScalar {
			return fmt.Errorf("%w: add requires a key and a value", types.ErrMissingRequiredArguments)
		}
		if s.Criteria != SlotAbsent {
			return reject(f, "criteria")
		}
		if s.Time != TimeNone || s.Range != RangeNone {
			return reject(f, "a timestamp")
		}
	case FamilySet:
		if s.Key != SlotScalar || s.Value != SlotScalar {
			return fmt.Errorf("%w: set requires a key and a value", types.ErrMissingRequiredArguments)
		}
		if !selector {
			return fmt.Errorf("%w: set requires criteria or record", types.ErrMissingRequiredArguments)
		}
		if s.Time != TimeNone || s.Range != RangeNone {
			return reject(f, "a timestamp")
		}
	case FamilyRemove:
		if s.Key != SlotScalar || s.Value != SlotScalar {
			return fmt.Errorf("%w: remove requires a key and a value", types.ErrMissingRequiredArguments)
		}
		if s.Record == SlotAbsent {
			return fmt.Errorf("%w: remove requires a record or records", types.ErrMissingRequiredArguments)
		}
		if s.Criteria != SlotAbsent {
			return reject(f, "criteria")
		}
		if s.Time != TimeNone || s.Range != RangeNone {
			return reject(f, "a timestamp")
		}
	case FamilyAudit:
		if s.Record != SlotScalar {
			return fmt.Errorf("%w: audit requires a single record", types.ErrMissingRequiredArguments)
		}
		if s.Key == SlotCollection {
			return reject(f, "a key collection")
		}
		if s.Criteria != SlotAbsent || s.Value != SlotAbsent {
			return reject(f, "criteria or a value")
		}
		if s.Time != TimeNone {
			return reject(f, "a timestamp (use start/end)")
		}
	case FamilyDescribe:
		if s.Record == SlotAbsent {
			return fmt.Errorf("%w: describe requires a record or records", types.ErrMissingRequiredArguments)
		}
		if s.Key != SlotAbsent || s.Criteria != SlotAbsent || s.Value != SlotAbsent {
			return reject(f, "a key, criteria, or value")
		}
		if s.Range != RangeNone {
			return reject(f, "a start/end range")
		}
	default:
		return fmt.Errorf("%w: unknown operation family %d", types.ErrUnsupportedShape, int(f))
	}
	return nil
}

func reject(f Family, what string) error {
	return fmt.Errorf("%w: no %s variant accepts %s", types.ErrMissingRequiredArguments, f, what)
}

// Shapes enumerates every shape Resolve can produce for the family. The
// dispatch table test uses this to prove exhaustive coverage.
func Shapes(f Family) []Shape {
	var out []Shape
	keys := []Slot{SlotAbsent, SlotScalar, SlotCollection}
	records := []Slot{SlotAbsent, SlotScalar, SlotCollection}
	criterias := []Slot{SlotAbsent, SlotScalar}
	values := []Slot{SlotAbsent, SlotScalar}
	times := []TimeSlot{TimeNone, TimeInstant, TimePhrase}
	ranges := []RangeSlot{
		RangeNone, RangeStartInstant, RangeStartPhrase,
		RangeStartEndInstant, RangeStartEndPhrase,
	}
	for _, k := range keys {
		for _, r := range records {
			for _, c := range criterias {
				for _, v := range values {
					for _, t := range times {
						for _, rg := range ranges {
							s := Shape{Key: k, Record: r, Criteria: c, Value: v, Time: t, Range: rg}
							if c == SlotScalar && r != SlotAbsent {
								continue // ambiguous, never produced
							}
							if validate(f, s) == nil {
								out = append(out, s)
							}
						}
					}
				}
			}
		}
	}
	return out
}
