// Package sqlite provides a SQLite-backed tournament store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/swiss/internal/adapters/repository"
	"github.com/okian/swiss/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/swiss/internal/domain/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const defaultBusyTimeoutMS = 5000

// Store persists competitors and match results in SQLite.
type Store struct {
	sqlDB         *sql.DB
	busyTimeoutMS int
}

// Option configures a Store.
type Option func(*Store)

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(ms int) Option {
	return func(s *Store) {
		if ms > 0 {
			s.busyTimeoutMS = ms
		}
	}
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	s := &Store{busyTimeoutMS: defaultBusyTimeoutMS}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		filepath.Clean(path), s.busyTimeoutMS)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s.sqlDB = sqlDB
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return repository.ErrNotConfigured
	}
	return nil
}

// AddCompetitor implements repository.Store.
func (s *Store) AddCompetitor(ctx context.Context, name string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `INSERT INTO competitors (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert competitor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("competitor id: %w", err)
	}
	return id, nil
}

// RecordMatch implements repository.Store.
func (s *Store) RecordMatch(ctx context.Context, winnerID, loserID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `INSERT INTO matches (winner, loser) VALUES (?, ?)`, winnerID, loserID)
	if err != nil {
		if kind := constraintKind(err); kind != nil {
			return kind
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// HasCompetitor implements repository.Store.
func (s *Store) HasCompetitor(ctx context.Context, id int64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM competitors WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup competitor: %w", err)
	}
	return true, nil
}

// CountCompetitors implements repository.Store.
func (s *Store) CountCompetitors(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(id) FROM competitors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count competitors: %w", err)
	}
	return n, nil
}

// ResetMatches implements repository.Store.
func (s *Store) ResetMatches(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}

// ResetCompetitors implements repository.Store. AUTOINCREMENT keeps the id
// sequence, so ids are not reused.
func (s *Store) ResetCompetitors(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM competitors`); err != nil {
		return fmt.Errorf("delete competitors: %w", err)
	}
	return nil
}

// ResetAll implements repository.Resetter.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM competitors`); err != nil {
		return fmt.Errorf("delete competitors: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

const standingsSQL = `
SELECT c.id,
       c.name,
       COALESCE(w.n, 0)                    AS wins,
       COALESCE(w.n, 0) + COALESCE(l.n, 0) AS matches
  FROM competitors c
  LEFT OUTER JOIN (SELECT winner AS id, COUNT(*) AS n FROM matches GROUP BY winner) w ON w.id = c.id
  LEFT OUTER JOIN (SELECT loser AS id, COUNT(*) AS n FROM matches GROUP BY loser) l ON l.id = c.id
 ORDER BY c.id`

// AllStandingsRaw implements repository.Store.
func (s *Store) AllStandingsRaw(ctx context.Context) ([]model.StandingRow, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, standingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	out := make([]model.StandingRow, 0)
	for rows.Next() {
		var r model.StandingRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Wins, &r.Matches); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standings: %w", err)
	}
	return out, nil
}

// constraintKind maps a constraint violation to the matching store error,
// or returns nil for any other error.
func constraintKind(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return repository.ErrCompetitorNotFound
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return repository.ErrSameCompetitor
		}
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "foreign key constraint failed"):
		return repository.ErrCompetitorNotFound
	case strings.Contains(message, "check constraint failed"):
		return repository.ErrSameCompetitor
	}
	return nil
}

var (
	_ repository.Store    = (*Store)(nil)
	_ repository.Resetter = (*Store)(nil)
)
