// Package store keeps a ledger of run and search results in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("intcode.store")

// ErrNotFound indicates no matching result exists.
var ErrNotFound = errors.New("result not found")

// Result modes recorded by the CLI.
const (
	ModeRun      = "run"
	ModeNounVerb = "noun-verb"
	ModeChain    = "chain"
	ModeFeedback = "feedback"
	ModePaint    = "paint"
	ModeArcade   = "arcade"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Detail is the mode-specific payload of a result, stored as canonical CBOR.
type Detail struct {
	Phases  []int `cbor:"1,keyasint,omitempty"`
	Noun    *int  `cbor:"2,keyasint,omitempty"`
	Verb    *int  `cbor:"3,keyasint,omitempty"`
	Tried   int   `cbor:"4,keyasint,omitempty"`
	Outputs []int `cbor:"5,keyasint,omitempty"`
	Steps   int   `cbor:"6,keyasint,omitempty"`
}

// Record is one ledger row.
type Record struct {
	ID          uuid.UUID
	ProgramHash string
	Mode        string
	Signal      int
	Detail      Detail
	CreatedAt   time.Time
}

// Store handles SQLite storage for results.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		program_hash TEXT NOT NULL,
		mode TEXT NOT NULL,
		signal INTEGER NOT NULL,
		detail BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS results_program_mode ON results (program_hash, mode)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	log.Debugf("opened result store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists rec, assigning an ID and timestamp when unset. The stored
// record is returned.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	detail, err := cborEncMode.Marshal(rec.Detail)
	if err != nil {
		return rec, fmt.Errorf("encoding detail: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO results (id, program_hash, mode, signal, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID.String(), rec.ProgramHash, rec.Mode, rec.Signal, detail, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return rec, fmt.Errorf("saving result: %w", err)
	}
	log.Debugf("saved %s result %d for %s", rec.Mode, rec.Signal, rec.ProgramHash)
	return rec, nil
}

// Get retrieves a result by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id.String())
	return scanRecord(row)
}

// Best returns the highest-signal result for a program and mode.
func (s *Store) Best(ctx context.Context, programHash, mode string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+" WHERE program_hash = ? AND mode = ? ORDER BY signal DESC, created_at ASC LIMIT 1",
		programHash, mode)
	return scanRecord(row)
}

// List returns results for a program, newest first. An empty programHash
// lists every program. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, programHash string, limit int) ([]Record, error) {
	query := selectColumns
	var args []any
	if programHash != "" {
		query += " WHERE program_hash = ?"
		args = append(args, programHash)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const selectColumns = "SELECT id, program_hash, mode, signal, detail, created_at FROM results"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec     Record
		id      string
		detail  []byte
		created int64
	)
	err := row.Scan(&id, &rec.ProgramHash, &rec.Mode, &rec.Signal, &detail, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, fmt.Errorf("scanning result: %w", err)
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return rec, fmt.Errorf("result id %q: %w", id, err)
	}
	if err := cbor.Unmarshal(detail, &rec.Detail); err != nil {
		return rec, fmt.Errorf("decoding detail: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}
