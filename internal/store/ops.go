package store

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Request carries the normalized parameters of one operation. Timestamps
// arrive already resolved to instants; the RPC layer runs phrase
// resolution before the engine sees them.
type Request struct {
	Keys     []string
	Records  []int64
	Criteria string
	Value    types.Value
	HasValue bool
	Time     *int64
	Start    *int64
	End      *int64
}

// Get returns the most recently added value per key for the selected
// records, optionally at a past instant.
func (e *Engine) Get(credential, token string, req Request) (types.Dataset, error) {
	return e.read(credential, token, req, true)
}

// Select returns every stored value per key for the selected records,
// optionally at a past instant.
func (e *Engine) Select(credential, token string, req Request) (types.Dataset, error) {
	return e.read(credential, token, req, false)
}

func (e *Engine) read(credential, token string, req Request, latestOnly bool) (types.Dataset, error) {
	_, db, t, err := e.sessionDB(credential, token)
	if err != nil {
		return nil, err
	}

	records, err := e.targetRecords(db, req, req.Time)
	if err != nil {
		return nil, err
	}

	st, err := loadState(db, records, req.Keys, req.Time)
	if err != nil {
		return nil, err
	}
	if req.Time == nil {
		st.overlay(t)
	}

	out := types.Dataset{}
	for _, record := range records {
		keys := req.Keys
		if len(keys) == 0 {
			keys = st.keysOf(record)
		}
		byKey := map[string][]types.Value{}
		for _, key := range keys {
			vals := st.values(record, key)
			if len(vals) == 0 {
				continue
			}
			if latestOnly {
				vals = vals[len(vals)-1:]
			}
			byKey[key] = vals
		}
		if len(byKey) > 0 {
			out[record] = byKey
		}
	}
	return out, nil
}

// Describe returns the keys holding data in the selected records,
// optionally at a past instant.
func (e *Engine) Describe(credential, token string, req Request) (map[int64][]string, error) {
	_, db, t, err := e.sessionDB(credential, token)
	if err != nil {
		return nil, err
	}

	st, err := loadState(db, req.Records, nil, req.Time)
	if err != nil {
		return nil, err
	}
	if req.Time == nil {
		st.overlay(t)
	}

	out := make(map[int64][]string, len(req.Records))
	for _, record := range req.Records {
		out[record] = st.keysOf(record)
	}
	return out, nil
}

// Audit returns the committed change history for a record, optionally
// narrowed to one key and a time range. Staged writes are not history and
// never appear.
func (e *Engine) Audit(credential, token string, req Request) ([]types.AuditEntry, error) {
	_, db, _, err := e.sessionDB(credential, token)
	if err != nil {
		return nil, err
	}
	if len(req.Records) != 1 {
		return nil, fmt.Errorf("audit: expected one record, got %d", len(req.Records))
	}
	record := req.Records[0]

	query := "SELECT key, action, value, ts FROM journal WHERE record = ?"
	args := []any{record}
	if len(req.Keys) == 1 {
		query += " AND key = ?"
		args = append(args, req.Keys[0])
	}
	if req.Start != nil {
		query += " AND ts >= ?"
		args = append(args, *req.Start)
	}
	if req.End != nil {
		query += " AND ts < ?"
		args = append(args, *req.End)
	}
	query += " ORDER BY seq"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	defer rows.Close()

	var entries []types.AuditEntry
	for rows.Next() {
		var (
			key    string
			action string
			raw    string
			ts     int64
		)
		if err := rows.Scan(&key, &action, &raw, &ts); err != nil {
			return nil, fmt.Errorf("audit: %w", err)
		}
		v, err := wire.Decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("audit: %w", err)
		}
		verb := "ADD"
		if action == actionRemove {
			verb = "REMOVE"
		}
		entries = append(entries, types.AuditEntry{
			Timestamp:   ts,
			Description: fmt.Sprintf("%s %s AS %s IN %d", verb, key, v, record),
		})
	}
	return entries, rows.Err()
}

// Add appends the value under key. Without a target record a fresh record
// is created. Returns the records the value was added to; in autocommit
// mode records already holding the value are skipped.
func (e *Engine) Add(credential, token string, req Request) ([]int64, error) {
	sess, db, t, err := e.sessionDB(credential, token)
	if err != nil {
		return nil, err
	}

	targets := req.Records
	if len(targets) == 0 {
		id, err := e.reserveRecord(sess.environment, db, t)
		if err != nil {
			return nil, err
		}
		targets = []int64{id}
	}
	w := stagedWrite{family: writeAdd, key: req.Keys[0], value: req.Value, records: targets}

	if t != nil {
		e.mu.Lock()
		t.writes = append(t.writes, w)
		e.mu.Unlock()
		return targets, nil
	}
	return e.applyNow(db, w)
}

// Set replaces every value under key in the selected records with the
// given value. Criteria are resolved to concrete records at call time.
func (e *Engine) Set(credential, token string, req Request) error {
	_, db, t, err := e.sessionDB(credential, token)
	if err != nil {
		return err
	}

	targets, err := e.targetRecords(db, req, nil)
	if err != nil {
		return err
	}
	w := stagedWrite{family: writeSet, key: req.Keys[0], value: req.Value, records: targets}

	if t != nil {
		e.mu.Lock()
		t.writes = append(t.writes, w)
		e.mu.Unlock()
		return nil
	}
	_, err = e.applyNow(db, w)
	return err
}

// Remove deletes the value under key from the selected records.
func (e *Engine) Remove(credential, token string, req Request) error {
	_, db, t, err := e.sessionDB(credential, token)
	if err != nil {
		return err
	}

	w := stagedWrite{family: writeRemove, key: req.Keys[0], value: req.Value, records: req.Records}

	if t != nil {
		e.mu.Lock()
		t.writes = append(t.writes, w)
		e.mu.Unlock()
		return nil
	}
	_, err = e.applyNow(db, w)
	return err
}

// targetRecords resolves the request's selector to concrete record ids:
// explicit records pass through, criteria are evaluated against the
// journal at asOf.
func (e *Engine) targetRecords(db *sql.DB, req Request, asOf *int64) ([]int64, error) {
	if len(req.Records) > 0 {
		return req.Records, nil
	}
	if req.Criteria == "" {
		return nil, fmt.Errorf("no selector in request")
	}
	st, err := loadState(db, nil, nil, asOf)
	if err != nil {
		return nil, err
	}
	return matchCriteria(st, req.Criteria)
}

// applyNow executes one write immediately in its own SQL transaction and
// returns the records it changed.
func (e *Engine) applyNow(db *sql.DB, w stagedWrite) ([]int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	applied, err := e.applyWrite(tx, w)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return applied, nil
}

// applyWrite appends the journal rows for one write inside tx. Used by
// autocommit calls and by transaction commit replay.
func (e *Engine) applyWrite(tx *sql.Tx, w stagedWrite) ([]int64, error) {
	raw, err := wire.Encode(w.value)
	if err != nil {
		return nil, err
	}
	ts := e.now().UnixMicro()

	var applied []int64
	for _, record := range w.records {
		st, err := loadState(tx, []int64{record}, []string{w.key}, nil)
		if err != nil {
			return nil, err
		}
		present := containsValue(st.values(record, w.key), w.value)

		switch w.family {
		case writeAdd:
			if present {
				continue
			}
			if err := insertRow(tx, record, w.key, actionAdd, string(raw), ts); err != nil {
				return nil, err
			}
		case writeRemove:
			if !present {
				continue
			}
			if err := insertRow(tx, record, w.key, actionRemove, string(raw), ts); err != nil {
				return nil, err
			}
		case writeSet:
			for _, old := range st.values(record, w.key) {
				if old.Equal(w.value) {
					continue
				}
				oldRaw, err := wire.Encode(old)
				if err != nil {
					return nil, err
				}
				if err := insertRow(tx, record, w.key, actionRemove, string(oldRaw), ts); err != nil {
					return nil, err
				}
			}
			if !present {
				if err := insertRow(tx, record, w.key, actionAdd, string(raw), ts); err != nil {
					return nil, err
				}
			}
		}
		applied = append(applied, record)
	}
	return applied, nil
}

func insertRow(tx *sql.Tx, record int64, key, action, value string, ts int64) error {
	_, err := tx.Exec(
		`INSERT INTO journal (record, key, action, value, ts) VALUES (?, ?, ?, ?, ?)`,
		record, key, action, value, ts,
	)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

// reserveRecord allocates a fresh record id. Staged transactions keep the
// id reserved until commit or abort so concurrent sessions cannot claim
// it.
func (e *Engine) reserveRecord(environment string, db *sql.DB, t *txn) (int64, error) {
	var maxID int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(record), 0) FROM journal`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("allocate record: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reserved, ok := e.reserved[environment]
	if !ok {
		reserved = map[int64]bool{}
		e.reserved[environment] = reserved
	}
	id := maxID + 1
	for reserved[id] {
		id++
	}
	if t != nil {
		reserved[id] = true
		t.allocated = append(t.allocated, id)
	}
	return id, nil
}
