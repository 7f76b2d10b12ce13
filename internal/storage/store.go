package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/rstindex/pkg/types"
)

var (
	// ErrNotFound is returned when a single-record query matches nothing.
	// This is a normal outcome for lookups, not a store failure.
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")
)

// Predicate decides whether a record matches a query. Predicates run over
// detached copies; they must not retain or mutate the record.
type Predicate func(types.Record) bool

// Options configures how a Store is opened.
type Options struct {
	// InMemory backs the store with process memory instead of a file.
	// The path argument to Open is ignored.
	InMemory bool
	// BufferWrites defers persistence until Flush or Close. The store must
	// be closed on every exit path or buffered writes are lost.
	BufferWrites bool
}

// Store is a SQLite-backed set of named, schema-less record collections.
// It expects a single active writer; callers serialize access.
type Store struct {
	db       *sql.DB
	tx       *sql.Tx
	path     string
	buffered bool
	closed   bool
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dsn string, inMemory bool) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: the store is single-writer, and the buffered-write
	// transaction must see every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return db, nil
}

// Open creates or opens the backing store at path. With Options.InMemory the
// path is ignored and the store is ephemeral.
func Open(path string, opts Options) (*Store, error) {
	dsn := path
	if opts.InMemory {
		dsn = ":memory:"
	}

	db, err := openDatabase(dsn, opts.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	st := &Store{db: db, path: path, buffered: opts.BufferWrites}
	if opts.BufferWrites {
		if err := st.begin(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return st, nil
}

// Path returns the backing file path, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Buffered reports whether the store defers persistence until Flush/Close.
func (s *Store) Buffered() bool {
	return s.buffered
}

func (s *Store) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write buffer: %w", err)
	}
	s.tx = tx
	return nil
}

// q returns the active querier: the buffered transaction when one is open,
// the database otherwise.
func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Flush persists buffered writes. A no-op for unbuffered stores.
func (s *Store) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("failed to flush buffered writes: %w", err)
	}
	s.tx = nil
	return s.begin()
}

// Close flushes buffered writes and releases the backing store.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tx != nil {
		if err := s.tx.Commit(); err != nil {
			_ = s.db.Close()
			return fmt.Errorf("failed to flush buffered writes: %w", err)
		}
		s.tx = nil
	}
	return s.db.Close()
}

// Insert appends a record to a collection.
func (s *Store) Insert(ctx context.Context, collection string, rec types.Record) error {
	if s.closed {
		return ErrClosed
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = s.q().ExecContext(ctx,
		`INSERT INTO records (collection, body) VALUES (?, ?)`, collection, string(body))
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// InsertMany appends records in order.
func (s *Store) InsertMany(ctx context.Context, collection string, recs []types.Record) error {
	for _, rec := range recs {
		if err := s.Insert(ctx, collection, rec); err != nil {
			return err
		}
	}
	return nil
}

// row pairs a record with its internal identity during a scan.
type row struct {
	id  int64
	rec types.Record
}

// scan loads a whole collection in insertion order. Each record is a fresh
// decode, so everything handed to predicates and callers is detached.
func (s *Store) scan(ctx context.Context, collection string) ([]row, error) {
	rows, err := s.q().QueryContext(ctx,
		`SELECT id, body FROM records WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out []row
	for rows.Next() {
		var id int64
		var body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("corrupt record %d in %s: %w", id, collection, err)
		}
		out = append(out, row{id: id, rec: rec})
	}
	return out, rows.Err()
}

// All returns every record in a collection, in insertion order.
func (s *Store) All(ctx context.Context, collection string) ([]types.Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	rows, err := s.scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	recs := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.rec)
	}
	return recs, nil
}

// Search returns the records matching pred, in insertion order. A nil
// predicate matches everything.
func (s *Store) Search(ctx context.Context, collection string, pred Predicate) ([]types.Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if pred == nil {
		return s.All(ctx, collection)
	}
	rows, err := s.scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	recs := make([]types.Record, 0)
	for _, r := range rows {
		if pred(r.rec) {
			recs = append(recs, r.rec)
		}
	}
	return recs, nil
}

// Get returns the first record matching pred, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection string, pred Predicate) (types.Record, error) {
	recs, err := s.Search(ctx, collection, pred)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// Remove deletes every record matching pred.
func (s *Store) Remove(ctx context.Context, collection string, pred Predicate) error {
	if s.closed {
		return ErrClosed
	}
	rows, err := s.scan(ctx, collection)
	if err != nil {
		return err
	}
	var ids []int64
	for _, r := range rows {
		if pred == nil || pred(r.rec) {
			ids = append(ids, r.id)
		}
	}
	return s.deleteByID(ctx, collection, ids)
}

// deleteByID removes records by internal identity in a single statement.
func (s *Store) deleteByID(ctx context.Context, collection string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `DELETE FROM records WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	if _, err := s.q().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", collection, err)
	}
	return nil
}

// Upsert replaces every record matching pred with rec, keeping the matched
// rows' identities (and therefore their position in insertion order). When
// nothing matches, rec is appended instead.
func (s *Store) Upsert(ctx context.Context, collection string, rec types.Record, pred Predicate) error {
	if s.closed {
		return ErrClosed
	}
	rows, err := s.scan(ctx, collection)
	if err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	matched := false
	for _, r := range rows {
		if pred != nil && !pred(r.rec) {
			continue
		}
		matched = true
		if _, err := s.q().ExecContext(ctx,
			`UPDATE records SET body = ? WHERE id = ?`, string(body), r.id); err != nil {
			return fmt.Errorf("failed to upsert into %s: %w", collection, err)
		}
	}
	if !matched {
		return s.Insert(ctx, collection, rec)
	}
	return nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var n int
	err := s.q().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}
