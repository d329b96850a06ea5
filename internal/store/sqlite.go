package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ SessionStore = (*SQLiteStore)(nil)

// SQLiteStore implements SessionStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		viewer     TEXT PRIMARY KEY,
		season     TEXT NOT NULL DEFAULT '',
		sort       TEXT NOT NULL DEFAULT 'market',
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS selections (
		viewer  TEXT NOT NULL REFERENCES sessions(viewer) ON DELETE CASCADE,
		kind    TEXT NOT NULL,
		key     TEXT NOT NULL,
		enabled INTEGER NOT NULL,
		PRIMARY KEY (viewer, kind, key)
	)`,
}

const (
	kindBook   = "book"
	kindMarket = "market"
)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migrations and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// SessionStore implementation
// ---------------------------------------------------------------------------

// SaveSession replaces the viewer's session row and selections in one
// transaction.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *SavedSession) error {
	if sess == nil || sess.Viewer == "" {
		return errors.New("store: session without viewer")
	}
	updated := sess.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (viewer, season, sort, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(viewer) DO UPDATE SET season = excluded.season, sort = excluded.sort, updated_at = excluded.updated_at`,
		sess.Viewer, sess.Season, sess.Sort, updated.UnixMilli()); err != nil {
		return fmt.Errorf("saving session %s: %w", sess.Viewer, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE viewer = ?`, sess.Viewer); err != nil {
		return fmt.Errorf("clearing selections for %s: %w", sess.Viewer, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO selections (viewer, kind, key, enabled) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for kind, sel := range map[string]map[string]bool{kindBook: sess.Books, kindMarket: sess.Markets} {
		for key, on := range sel {
			if _, err := stmt.ExecContext(ctx, sess.Viewer, kind, key, on); err != nil {
				return fmt.Errorf("saving %s selection %q: %w", kind, key, err)
			}
		}
	}
	return tx.Commit()
}

// LoadSession reads the viewer's session and selections.
func (s *SQLiteStore) LoadSession(ctx context.Context, viewer string) (*SavedSession, error) {
	sess := &SavedSession{Viewer: viewer, Books: map[string]bool{}, Markets: map[string]bool{}}
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT season, sort, updated_at FROM sessions WHERE viewer = ?`, viewer).
		Scan(&sess.Season, &sess.Sort, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", viewer, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.UnixMilli(updated)

	rows, err := s.db.QueryContext(ctx, `SELECT kind, key, enabled FROM selections WHERE viewer = ?`, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, key string
		var on bool
		if err := rows.Scan(&kind, &key, &on); err != nil {
			return nil, err
		}
		switch kind {
		case kindBook:
			sess.Books[key] = on
		case kindMarket:
			sess.Markets[key] = on
		}
	}
	return sess, rows.Err()
}

// DeleteSession removes the viewer's session; selections cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, viewer string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE viewer = ?`, viewer)
	return err
}
