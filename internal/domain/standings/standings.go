// Package standings ranks competitors by their win record.
package standings

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/swiss/internal/domain/model"
)

// ErrInconsistentRow is returned when the store hands back a row that breaks
// the standings invariants (negative counts, wins above matches, duplicate id).
var ErrInconsistentRow = errors.New("inconsistent standing row")

// Source is the read side of the store the engine needs.
type Source interface {
	// AllStandingsRaw returns one row per competitor with aggregated counts.
	AllStandingsRaw(ctx context.Context) ([]model.StandingRow, error)
}

// Compute returns every competitor exactly once, ordered by wins descending.
// Competitors with equal wins are ordered by id ascending, i.e. by
// registration order.
func Compute(ctx context.Context, src Source) ([]model.StandingRow, error) {
	raw, err := src.AllStandingsRaw(ctx)
	if err != nil {
		return nil, model.StoreFailure("standings", err)
	}
	return Rank(raw)
}

// Rank validates rows and sorts a copy of them.
func Rank(raw []model.StandingRow) ([]model.StandingRow, error) {
	rows := make([]model.StandingRow, len(raw))
	copy(rows, raw)

	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		if r.Wins < 0 || r.Matches < 0 || r.Wins > r.Matches {
			return nil, model.StoreFailure("standings",
				fmt.Errorf("%w: competitor %d has %d wins in %d matches", ErrInconsistentRow, r.ID, r.Wins, r.Matches))
		}
		if _, dup := seen[r.ID]; dup {
			return nil, model.StoreFailure("standings",
				fmt.Errorf("%w: competitor %d listed twice", ErrInconsistentRow, r.ID))
		}
		seen[r.ID] = struct{}{}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}
