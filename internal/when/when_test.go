package when

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePhrase(t *testing.T) {
	now := time.Date(2026, time.August, 25, 15, 4, 5, 0, time.UTC)
	r := Resolver{Now: func() time.Time { return now }}

	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"now", now},
		{"today", time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)},
		{"10 seconds ago", now.Add(-10 * time.Second)},
		{"5 minutes ago", now.Add(-5 * time.Minute)},
		{"1 hour ago", now.Add(-time.Hour)},
		{"3 days ago", now.AddDate(0, 0, -3)},
		{"2 weeks ago", now.AddDate(0, 0, -14)},
		{"1 month ago", now.AddDate(0, -1, 0)},
		{"2 years ago", now.AddDate(-2, 0, 0)},
		{"last second", now.Add(-time.Second)},
		{"last hour", now.Add(-time.Hour)},
		{"last week", now.AddDate(0, 0, -7)},
		{"last month", now.AddDate(0, -1, 0)},
		{"last year", now.AddDate(-1, 0, 0)},
		{"  Last Week  ", now.AddDate(0, 0, -7)},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, err := r.ResolvePhrase(tt.phrase)
			require.NoError(t, err)
			assert.Equal(t, tt.want.UnixMicro(), got)
		})
	}
}

func TestResolvePhraseErrors(t *testing.T) {
	r := Resolver{Now: func() time.Time { return time.Unix(0, 0) }}

	for _, phrase := range []string{
		"",
		"tomorrow",
		"three days ago",
		"-1 days ago",
		"3 fortnights ago",
		"last fortnight",
		"ago",
		"3 ago",
	} {
		t.Run(phrase, func(t *testing.T) {
			_, err := r.ResolvePhrase(phrase)
			assert.Error(t, err)
		})
	}
}

// The zero resolver uses the wall clock.
func TestResolverZeroValue(t *testing.T) {
	before := time.Now().UnixMicro()
	got, err := Resolver{}.ResolvePhrase("now")
	after := time.Now().UnixMicro()

	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}
