// Package when resolves natural-language time phrases ("yesterday",
// "3 days ago") to absolute instants. The server resolves phrases at the
// point an operation executes; clients ship them over the wire verbatim.
package when

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Resolver parses a small English phrase grammar. The zero value resolves
// against the wall clock; tests pin Now.
type Resolver struct {
	Now func() time.Time
}

var _ types.PhraseResolver = Resolver{}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// ResolvePhrase returns the instant the phrase names, in microseconds
// since the epoch. Supported forms: "now", "today", "yesterday",
// "N <unit> ago", and "last <unit>", where unit is second, minute, hour,
// day, week, month, or year (singular or plural).
func (r Resolver) ResolvePhrase(text string) (int64, error) {
	now := r.now()
	phrase := strings.ToLower(strings.TrimSpace(text))

	switch phrase {
	case "now":
		return now.UnixMicro(), nil
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).UnixMicro(), nil
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).UnixMicro(), nil
	}

	if unit, ok := strings.CutPrefix(phrase, "last "); ok {
		d, err := unitSpan(unit)
		if err != nil {
			return 0, fmt.Errorf("when: cannot parse %q: %w", text, err)
		}
		return d.apply(now, -1).UnixMicro(), nil
	}

	if rest, ok := strings.CutSuffix(phrase, " ago"); ok {
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return 0, fmt.Errorf("when: cannot parse %q", text)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("when: cannot parse %q", text)
		}
		d, err := unitSpan(fields[1])
		if err != nil {
			return 0, fmt.Errorf("when: cannot parse %q: %w", text, err)
		}
		return d.apply(now, -n).UnixMicro(), nil
	}

	return 0, fmt.Errorf("when: cannot parse %q", text)
}

// span is one calendar or clock unit. Calendar units (day and larger) go
// through AddDate so month lengths and DST are handled correctly.
type span struct {
	dur           time.Duration
	years, months int
	days          int
}

func (s span) apply(t time.Time, n int) time.Time {
	if s.dur != 0 {
		return t.Add(time.Duration(n) * s.dur)
	}
	return t.AddDate(n*s.years, n*s.months, n*s.days)
}

func unitSpan(unit string) (span, error) {
	switch strings.TrimSuffix(unit, "s") {
	case "second":
		return span{dur: time.Second}, nil
	case "minute":
		return span{dur: time.Minute}, nil
	case "hour":
		return span{dur: time.Hour}, nil
	case "day":
		return span{days: 1}, nil
	case "week":
		return span{days: 7}, nil
	case "month":
		return span{months: 1}, nil
	case "year":
		return span{years: 1}, nil
	default:
		return span{}, fmt.Errorf("unknown unit %q", unit)
	}
}
