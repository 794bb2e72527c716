package store

import (
	"fmt"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Commit finalizes the staged transaction as one all-or-nothing unit.
// Detection is first-committer-wins: if any journal row touching a staged
// (record, key) pair landed after staging began, the commit fails with
// types.ErrTransactionConflict. The transaction is discarded and the
// session returns to autocommit regardless of the outcome.
func (e *Engine) Commit(credential, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[credential]
	if !ok {
		return ErrUnknownCredential
	}
	t, ok := e.txns[token]
	if !ok {
		return ErrUnknownTransaction
	}

	// The session leaves Staged no matter how the commit ends.
	defer func() {
		e.dropTxnLocked(token)
		if sess.token == token {
			sess.token = ""
		}
	}()

	db, err := e.dbLocked(t.environment)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}

	// Check and replay share the transaction so no foreign write can land
	// between them.
	conflicted, err := e.hasConflict(tx, t)
	if err != nil {
		tx.Rollback()
		return err
	}
	if conflicted {
		tx.Rollback()
		return fmt.Errorf("%w: overlapping write committed after staging", types.ErrTransactionConflict)
	}

	for _, w := range t.writes {
		if _, err := e.applyWrite(tx, w); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply staged write: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// hasConflict reports whether any (record, key) pair staged for writing
// received a journal row after the transaction's start position.
func (e *Engine) hasConflict(db querier, t *txn) (bool, error) {
	seen := map[[2]any]bool{}
	for _, w := range t.writes {
		for _, record := range w.records {
			pair := [2]any{record, w.key}
			if seen[pair] {
				continue
			}
			seen[pair] = true

			rows, err := db.Query(
				`SELECT 1 FROM journal WHERE record = ? AND key = ? AND seq > ? LIMIT 1`,
				record, w.key, t.startSeq,
			)
			if err != nil {
				return false, fmt.Errorf("conflict check: %w", err)
			}
			hit := rows.Next()
			if err := rows.Close(); err != nil {
				return false, err
			}
			if hit {
				return true, nil
			}
		}
	}
	return false, nil
}
