// Package postgres provides a PostgreSQL-backed tournament store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/swiss/internal/adapters/repository"
	"github.com/okian/swiss/internal/domain/model"
)

// SQLSTATE codes mapped to store errors.
const (
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS competitors (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS matches (
	id     BIGSERIAL PRIMARY KEY,
	winner BIGINT NOT NULL REFERENCES competitors (id),
	loser  BIGINT NOT NULL REFERENCES competitors (id),
	CHECK (winner <> loser)
);
CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches (winner);
CREATE INDEX IF NOT EXISTS idx_matches_loser ON matches (loser);
`

// Store persists competitors and match results in Postgres.
type Store struct {
	pool     *pgxpool.Pool
	maxConns int32
}

// Option configures a Store.
type Option func(*Store)

// WithMaxConns caps the size of the connection pool.
func WithMaxConns(n int32) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// NewStore connects to Postgres and ensures the tables exist.
func NewStore(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if s.maxConns > 0 {
		cfg.MaxConns = s.maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTablesSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	s.pool = pool
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) ready() error {
	if s == nil || s.pool == nil {
		return repository.ErrNotConfigured
	}
	return nil
}

// AddCompetitor implements repository.Store.
func (s *Store) AddCompetitor(ctx context.Context, name string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var id int64
	if err := s.pool.QueryRow(ctx, `INSERT INTO competitors (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert competitor: %w", err)
	}
	return id, nil
}

// RecordMatch implements repository.Store.
func (s *Store) RecordMatch(ctx context.Context, winnerID, loserID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO matches (winner, loser) VALUES ($1, $2)`, winnerID, loserID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case foreignKeyViolation:
				return repository.ErrCompetitorNotFound
			case checkViolation:
				return repository.ErrSameCompetitor
			}
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// HasCompetitor implements repository.Store.
func (s *Store) HasCompetitor(ctx context.Context, id int64) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	var found int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM competitors WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup competitor: %w", err)
	}
	return true, nil
}

// CountCompetitors implements repository.Store.
func (s *Store) CountCompetitors(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(id) FROM competitors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count competitors: %w", err)
	}
	return int(n), nil
}

// ResetMatches implements repository.Store.
func (s *Store) ResetMatches(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}

// ResetCompetitors implements repository.Store. The serial sequence is not
// restarted, so ids are not reused.
func (s *Store) ResetCompetitors(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM competitors`); err != nil {
		return fmt.Errorf("delete competitors: %w", err)
	}
	return nil
}

// ResetAll implements repository.Resetter.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM competitors`); err != nil {
		return fmt.Errorf("delete competitors: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
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
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, standingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	out := make([]model.StandingRow, 0)
	for rows.Next() {
		var (
			r             model.StandingRow
			wins, matches int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &wins, &matches); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		r.Wins, r.Matches = int(wins), int(matches)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standings: %w", err)
	}
	return out, nil
}

var (
	_ repository.Store    = (*Store)(nil)
	_ repository.Resetter = (*Store)(nil)
)
