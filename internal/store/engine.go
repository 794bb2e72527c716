// Package store implements the development server's storage engine: an
// append-only, time-versioned journal of record/key/value changes kept in
// SQLite, with session credentials and staged transactions held in memory.
// One engine serves multiple environments; each environment is its own
// database file under the data directory.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/strata/internal/when"
	"github.com/mesh-intelligence/strata/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Engine errors.
var (
	ErrClosed             = errors.New("engine is closed")
	ErrUnknownCredential  = errors.New("unknown credential")
	ErrUnknownTransaction = errors.New("unknown transaction token")
	ErrNestedTransaction  = errors.New("session already has a staged transaction")
)

// Config holds engine parameters.
type Config struct {
	// DataDir is where environment database files live. Created on open.
	DataDir string

	// Users maps username to password. An empty map accepts any login,
	// which is the development default.
	Users map[string]string

	// Phrases resolves natural-language timestamps. Defaults to the
	// built-in English resolver.
	Phrases types.PhraseResolver

	// Now is the clock used for journal timestamps. Defaults to time.Now.
	Now func() time.Time
}

// session is one authenticated connection's state.
type session struct {
	username    string
	environment string
	token       string // staged transaction token, empty in autocommit
}

// txn is a staged transaction: buffered writes plus the journal position
// observed when staging began, used for first-committer-wins detection.
type txn struct {
	environment string
	startSeq    int64
	writes      []stagedWrite
	allocated   []int64 // record ids reserved for adds without a record
}

// stagedWrite is one buffered write operation, replayed at commit.
type stagedWrite struct {
	family  writeFamily
	key     string
	value   types.Value
	records []int64
}

type writeFamily int

const (
	writeAdd writeFamily = iota
	writeSet
	writeRemove
)

// Engine is the storage engine. Safe for concurrent use; journal state is
// guarded by SQLite, session and transaction state by an internal mutex.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	closed   bool
	dbs      map[string]*sql.DB // environment name -> database
	sessions map[string]*session
	txns     map[string]*txn
	reserved map[string]map[int64]bool // environment -> record ids pending commit
}

// Open creates the data directory and returns a ready engine.
func Open(cfg Config) (*Engine, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	cfg.DataDir = dataDir
	if cfg.Phrases == nil {
		cfg.Phrases = when.Resolver{Now: cfg.Now}
	}
	return &Engine{
		cfg:      cfg,
		dbs:      map[string]*sql.DB{},
		sessions: map[string]*session{},
		txns:     map[string]*txn{},
		reserved: map[string]map[int64]bool{},
	}, nil
}

// Close releases every environment database. Open transactions are
// discarded; sessions become invalid. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	var firstErr error
	for name, db := range e.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
	}
	e.dbs = map[string]*sql.DB{}
	e.sessions = map[string]*session{}
	e.txns = map[string]*txn{}
	e.reserved = map[string]map[int64]bool{}
	e.closed = true
	return firstErr
}

// Login authenticates the user against the configured user table and
// issues a credential bound to the environment. The environment database
// is opened on first use.
func (e *Engine) Login(username, password, environment string) (string, error) {
	if environment == "" {
		environment = types.DefaultEnvironment
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrClosed
	}
	if len(e.cfg.Users) > 0 {
		want, ok := e.cfg.Users[username]
		if !ok || want != password {
			return "", fmt.Errorf("%w: bad username or password", types.ErrAuthenticationFailure)
		}
	}
	if _, err := e.dbLocked(environment); err != nil {
		return "", err
	}

	cred := uuid.Must(uuid.NewV7()).String()
	e.sessions[cred] = &session{username: username, environment: environment}
	return cred, nil
}

// Logout invalidates the credential. The environment must be the one the
// credential was issued for. Any staged transaction is discarded.
func (e *Engine) Logout(credential, environment string) error {
	if environment == "" {
		environment = types.DefaultEnvironment
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[credential]
	if !ok {
		return ErrUnknownCredential
	}
	if sess.environment != environment {
		return fmt.Errorf("%w: credential is bound to environment %q", types.ErrAuthenticationFailure, sess.environment)
	}
	if sess.token != "" {
		e.dropTxnLocked(sess.token)
	}
	delete(e.sessions, credential)
	return nil
}

// Stage begins a transaction for the session and returns its token.
// Sessions hold at most one staged transaction at a time.
func (e *Engine) Stage(credential string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[credential]
	if !ok {
		return "", ErrUnknownCredential
	}
	if sess.token != "" {
		return "", ErrNestedTransaction
	}
	db, err := e.dbLocked(sess.environment)
	if err != nil {
		return "", err
	}

	var startSeq int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&startSeq); err != nil {
		return "", fmt.Errorf("read journal position: %w", err)
	}

	token := uuid.Must(uuid.NewV7()).String()
	e.txns[token] = &txn{environment: sess.environment, startSeq: startSeq}
	sess.token = token
	return token, nil
}

// Abort discards the staged transaction. The session returns to
// autocommit.
func (e *Engine) Abort(credential, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[credential]
	if !ok {
		return ErrUnknownCredential
	}
	if _, ok := e.txns[token]; !ok {
		return ErrUnknownTransaction
	}
	e.dropTxnLocked(token)
	if sess.token == token {
		sess.token = ""
	}
	return nil
}

// dropTxnLocked removes a transaction and releases its reserved record
// ids. Caller holds e.mu.
func (e *Engine) dropTxnLocked(token string) {
	t, ok := e.txns[token]
	if !ok {
		return
	}
	for _, id := range t.allocated {
		delete(e.reserved[t.environment], id)
	}
	delete(e.txns, token)
}

// dbLocked returns the environment database, opening and migrating it on
// first use. Caller holds e.mu.
func (e *Engine) dbLocked(environment string) (*sql.DB, error) {
	if db, ok := e.dbs[environment]; ok {
		return db, nil
	}
	path := filepath.Join(e.cfg.DataDir, environment+".db")
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", environment, err)
	}
	// SQLite allows one writer at a time; a single connection makes
	// concurrent sessions queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", environment, err)
	}
	e.dbs[environment] = db
	return db, nil
}

// sessionDB resolves the credential to its session, database, and staged
// transaction (nil in autocommit).
func (e *Engine) sessionDB(credential, token string) (*session, *sql.DB, *txn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, nil, nil, ErrClosed
	}
	sess, ok := e.sessions[credential]
	if !ok {
		return nil, nil, nil, ErrUnknownCredential
	}
	db, err := e.dbLocked(sess.environment)
	if err != nil {
		return nil, nil, nil, err
	}
	if token == "" {
		return sess, db, nil, nil
	}
	t, ok := e.txns[token]
	if !ok {
		return nil, nil, nil, ErrUnknownTransaction
	}
	return sess, db, t, nil
}

func (e *Engine) now() time.Time {
	if e.cfg.Now != nil {
		return e.cfg.Now()
	}
	return time.Now()
}

// ResolvePhrase exposes the engine's phrase resolver to the RPC layer.
func (e *Engine) ResolvePhrase(text string) (int64, error) {
	return e.cfg.Phrases.ResolvePhrase(text)
}
