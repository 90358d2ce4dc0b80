// Package repository defines the tournament store interface and errors.
package repository

import (
	"context"

	"github.com/okian/swiss/internal/domain/model"
)

// Store owns competitors and match results. Implementations must be safe to
// share, but callers get no isolation across calls beyond what the backing
// storage provides.
type Store interface {
	// AddCompetitor creates a competitor and returns its fresh, never reused id.
	AddCompetitor(ctx context.Context, name string) (int64, error)

	// RecordMatch stores one match result. Returns ErrSameCompetitor or
	// ErrCompetitorNotFound when the backing storage enforces those rules.
	RecordMatch(ctx context.Context, winnerID, loserID int64) error

	// HasCompetitor reports whether id names a registered competitor.
	HasCompetitor(ctx context.Context, id int64) (bool, error)

	// CountCompetitors returns the number of registered competitors.
	CountCompetitors(ctx context.Context) (int, error)

	// ResetMatches deletes every match result.
	ResetMatches(ctx context.Context) error

	// ResetCompetitors deletes every competitor. Match results must be reset first.
	ResetCompetitors(ctx context.Context) error

	// AllStandingsRaw returns exactly one row per competitor, including those
	// without matches, ordered by id ascending.
	AllStandingsRaw(ctx context.Context) ([]model.StandingRow, error)
}

// Resetter is implemented by stores that can clear both collections atomically.
type Resetter interface {
	ResetAll(ctx context.Context) error
}
