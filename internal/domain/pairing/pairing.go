// Package pairing builds the next round of a Swiss-system event from the
// current standings.
package pairing

import (
	"context"
	"fmt"

	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/internal/domain/standings"
)

// Pair matches rows 2k and 2k+1 for every k. The rows must already be in
// ranking order. An odd number of rows is rejected with
// model.ErrOddCompetitors; nobody is dropped.
func Pair(rows []model.StandingRow) ([]model.Pairing, error) {
	if len(rows)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", model.ErrOddCompetitors, len(rows))
	}
	pairs := make([]model.Pairing, 0, len(rows)/2)
	for i := 0; i+1 < len(rows); i += 2 {
		a, b := rows[i], rows[i+1]
		pairs = append(pairs, model.Pairing{
			ID1:   a.ID,
			Name1: a.Name,
			ID2:   b.ID,
			Name2: b.Name,
		})
	}
	return pairs, nil
}

// Compute ranks the competitors held by src and pairs them.
func Compute(ctx context.Context, src standings.Source) ([]model.Pairing, error) {
	rows, err := standings.Compute(ctx, src)
	if err != nil {
		return nil, err
	}
	return Pair(rows)
}
