package types

import (
	"strconv"
	"time"
)

// TimeKind distinguishes absolute instants from natural-language phrases.
type TimeKind int

const (
	// TimeInstant is an absolute point in time, microseconds since epoch.
	TimeInstant TimeKind = iota
	// TimePhrase is a natural-language description ("last week") resolved
	// remotely before the operation executes.
	TimePhrase
)

// Timestamp is a tagged union over the two ways callers express a point in
// time. The tag is fixed at construction; resolving a phrase to an instant
// is the remote side's job.
type Timestamp struct {
	kind   TimeKind
	micros int64
	phrase string
}

// Micros builds an instant timestamp from microseconds since the epoch.
func Micros(us int64) Timestamp { return Timestamp{kind: TimeInstant, micros: us} }

// At builds an instant timestamp from a time.Time.
func At(t time.Time) Timestamp { return Micros(t.UnixMicro()) }

// Phrase builds a phrase timestamp.
func Phrase(text string) Timestamp { return Timestamp{kind: TimePhrase, phrase: text} }

// Kind reports whether the timestamp is an instant or a phrase.
func (t Timestamp) Kind() TimeKind { return t.kind }

// Micros returns microseconds since the epoch; zero for phrases.
func (t Timestamp) Micros() int64 {
	if t.kind == TimeInstant {
		return t.micros
	}
	return 0
}

// Phrase returns the phrase text; empty for instants.
func (t Timestamp) Phrase() string {
	if t.kind == TimePhrase {
		return t.phrase
	}
	return ""
}

// Time converts an instant timestamp to a time.Time.
func (t Timestamp) Time() time.Time { return time.UnixMicro(t.micros) }

// String renders the timestamp for display.
func (t Timestamp) String() string {
	if t.kind == TimePhrase {
		return t.phrase
	}
	return strconv.FormatInt(t.micros, 10)
}
