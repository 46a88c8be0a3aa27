package storage

import (
	"database/sql"
	"errors"
	"fmt"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no row owned by the caller matches.
var ErrNotFound = errors.New("record not found")

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB

	// scopedNameLookup adds user_id to the find-or-create lookup of expense
	// types and vendors. Off by default: the lookup matches on name only and
	// can hand back another user's row.
	scopedNameLookup bool
}

// Option configures a DB.
type Option func(*DB)

// WithScopedNameLookup toggles user scoping of find-or-create name lookups.
func WithScopedNameLookup(enabled bool) Option {
	return func(db *DB) {
		db.scopedNameLookup = enabled
	}
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One connection keeps ":memory:" databases and the foreign_keys pragma
	// consistent across calls.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	for _, opt := range opts {
		opt(db)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// affectedOrNotFound converts a zero-row write into ErrNotFound.
func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
