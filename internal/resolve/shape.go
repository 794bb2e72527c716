package resolve

import "strings"

// Family identifies a logical operation family.
type Family int

const (
	FamilyGet Family = iota
	FamilySelect
	FamilyAdd
	FamilySet
	FamilyRemove
	FamilyAudit
	FamilyDescribe
)

// Families lists every operation family, for table-coverage enumeration.
var Families = []Family{
	FamilyGet, FamilySelect, FamilyAdd, FamilySet,
	FamilyRemove, FamilyAudit, FamilyDescribe,
}

func (f Family) String() string {
	switch f {
	case FamilyGet:
		return "get"
	case FamilySelect:
		return "select"
	case FamilyAdd:
		return "add"
	case FamilySet:
		return "set"
	case FamilyRemove:
		return "remove"
	case FamilyAudit:
		return "audit"
	case FamilyDescribe:
		return "describe"
	default:
		return "unknown"
	}
}

// Slot describes the form of one optional parameter.
type Slot int

const (
	SlotAbsent Slot = iota
	SlotScalar
	SlotCollection
)

func (s Slot) String() string {
	switch s {
	case SlotScalar:
		return "scalar"
	case SlotCollection:
		return "collection"
	default:
		return "absent"
	}
}

// TimeSlot describes the form of the timestamp parameter.
type TimeSlot int

const (
	TimeNone TimeSlot = iota
	TimeInstant
	TimePhrase
)

func (t TimeSlot) String() string {
	switch t {
	case TimeInstant:
		return "instant"
	case TimePhrase:
		return "phrase"
	default:
		return "absent"
	}
}

// RangeSlot describes the form of the start/end parameter pair. Start and
// end always share one time kind; mixed kinds are rejected during
// resolution.
type RangeSlot int

const (
	RangeNone RangeSlot = iota
	RangeStartInstant
	RangeStartPhrase
	RangeStartEndInstant
	RangeStartEndPhrase
)

func (r RangeSlot) String() string {
	switch r {
	case RangeStartInstant:
		return "start=instant"
	case RangeStartPhrase:
		return "start=phrase"
	case RangeStartEndInstant:
		return "start=instant end=instant"
	case RangeStartEndPhrase:
		return "start=phrase end=phrase"
	default:
		return "absent"
	}
}

// Shape is the canonical descriptor of which parameters are present and in
// which form. Shapes are comparable and serve directly as dispatch table
// keys. The set of shapes per family is fixed and enumerable.
type Shape struct {
	Key      Slot
	Record   Slot
	Criteria Slot // absent or scalar
	Value    Slot // absent or scalar
	Time     TimeSlot
	Range    RangeSlot
}

// String renders the populated slots, e.g.
// "keys=collection records=collection timestamp=instant".
func (s Shape) String() string {
	var parts []string
	switch s.Key {
	case SlotScalar:
		parts = append(parts, "key=scalar")
	case SlotCollection:
		parts = append(parts, "keys=collection")
	}
	switch s.Record {
	case SlotScalar:
		parts = append(parts, "record=scalar")
	case SlotCollection:
		parts = append(parts, "records=collection")
	}
	if s.Criteria == SlotScalar {
		parts = append(parts, "criteria=scalar")
	}
	if s.Value == SlotScalar {
		parts = append(parts, "value=scalar")
	}
	if s.Time != TimeNone {
		parts = append(parts, "timestamp="+s.Time.String())
	}
	if s.Range != RangeNone {
		parts = append(parts, s.Range.String())
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " ")
}
