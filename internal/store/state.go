package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// state is the folded view of the journal: record to key to the distinct
// values present, in insertion order. The last element of a slice is the
// most recently added value.
type state map[int64]map[string][]types.Value

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// loadState folds journal rows into a state snapshot. records and keys
// narrow the query when non-empty; asOf limits the fold to rows at or
// before the instant (nil means present time).
func loadState(q querier, records []int64, keys []string, asOf *int64) (state, error) {
	var (
		where []string
		args  []any
	)
	if len(records) > 0 {
		ph := make([]string, len(records))
		for i, r := range records {
			ph[i] = "?"
			args = append(args, r)
		}
		where = append(where, "record IN ("+strings.Join(ph, ", ")+")")
	}
	if len(keys) > 0 {
		ph := make([]string, len(keys))
		for i, k := range keys {
			ph[i] = "?"
			args = append(args, k)
		}
		where = append(where, "key IN ("+strings.Join(ph, ", ")+")")
	}
	if asOf != nil {
		where = append(where, "ts <= ?")
		args = append(args, *asOf)
	}

	query := "SELECT record, key, action, value FROM journal"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	st := state{}
	for rows.Next() {
		var (
			record int64
			key    string
			action string
			raw    string
		)
		if err := rows.Scan(&record, &key, &action, &raw); err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		v, err := wire.Decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("load state record %d key %q: %w", record, key, err)
		}
		st.apply(record, key, action, v)
	}
	return st, rows.Err()
}

// apply folds one journal row into the state.
func (st state) apply(record int64, key, action string, v types.Value) {
	byKey, ok := st[record]
	if !ok {
		byKey = map[string][]types.Value{}
		st[record] = byKey
	}
	switch action {
	case actionAdd:
		if !containsValue(byKey[key], v) {
			byKey[key] = append(byKey[key], v)
		}
	case actionRemove:
		byKey[key] = removeValue(byKey[key], v)
	}
}

// overlay replays staged writes on top of a present-time snapshot so a
// staging session reads its own writes.
func (st state) overlay(t *txn) {
	if t == nil {
		return
	}
	for _, w := range t.writes {
		for _, record := range w.records {
			switch w.family {
			case writeAdd:
				st.apply(record, w.key, actionAdd, w.value)
			case writeRemove:
				st.apply(record, w.key, actionRemove, w.value)
			case writeSet:
				if byKey, ok := st[record]; ok {
					delete(byKey, w.key)
				}
				st.apply(record, w.key, actionAdd, w.value)
			}
		}
	}
}

// values returns the value set for (record, key); nil when empty.
func (st state) values(record int64, key string) []types.Value {
	vals := st[record][key]
	if len(vals) == 0 {
		return nil
	}
	return vals
}

// keysOf returns the sorted keys holding at least one value in record.
func (st state) keysOf(record int64) []string {
	byKey := st[record]
	keys := make([]string, 0, len(byKey))
	for key, vals := range byKey {
		if len(vals) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// recordIDs returns the records with at least one value, sorted.
func (st state) recordIDs() []int64 {
	ids := make([]int64, 0, len(st))
	for record := range st {
		if len(st.keysOf(record)) > 0 {
			ids = append(ids, record)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func containsValue(vals []types.Value, v types.Value) bool {
	for _, x := range vals {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

func removeValue(vals []types.Value, v types.Value) []types.Value {
	out := vals[:0]
	for _, x := range vals {
		if !x.Equal(v) {
			out = append(out, x)
		}
	}
	return out
}

const (
	actionAdd    = "add"
	actionRemove = "remove"
)
