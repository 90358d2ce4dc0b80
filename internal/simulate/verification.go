package simulate

import (
	"errors"
	"fmt"

	"github.com/okian/swiss/internal/domain/types"
)

// ErrVerification reports standings or pairings that break the Swiss rules.
var ErrVerification = errors.New("verification failed")

func verifyErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrVerification, fmt.Sprintf(format, args...))
}

// verifyStandings checks the table after rounds complete rounds of n competitors.
func verifyStandings(rows []types.Standing, n, rounds int) error {
	if len(rows) != n {
		return verifyErr("standings have %d rows, want %d", len(rows), n)
	}

	seen := make(map[int64]bool, n)
	totalWins := 0
	for i, r := range rows {
		if seen[r.ID] {
			return verifyErr("competitor %d appears twice", r.ID)
		}
		seen[r.ID] = true

		if r.Wins < 0 || r.Wins > r.Matches {
			return verifyErr("competitor %d has %d wins in %d matches", r.ID, r.Wins, r.Matches)
		}
		if r.Matches != rounds {
			return verifyErr("competitor %d played %d matches, want %d", r.ID, r.Matches, rounds)
		}
		if i > 0 {
			prev := rows[i-1]
			if r.Wins > prev.Wins {
				return verifyErr("row %d has more wins than row %d", i, i-1)
			}
			if r.Wins == prev.Wins && r.ID < prev.ID {
				return verifyErr("tied rows %d and %d are not ordered by id", i-1, i)
			}
		}
		totalWins += r.Wins
	}

	if want := rounds * n / 2; totalWins != want {
		return verifyErr("total wins %d, want %d", totalWins, want)
	}
	return nil
}

// verifyPairings checks that pairs are adjacent rows of rows and cover
// every competitor exactly once.
func verifyPairings(pairs []types.Pair, rows []types.Standing) error {
	if len(pairs)*2 != len(rows) {
		return verifyErr("%d pairs for %d competitors", len(pairs), len(rows))
	}
	for k, p := range pairs {
		a, b := rows[2*k], rows[2*k+1]
		if p.ID1 != a.ID || p.ID2 != b.ID {
			return verifyErr("pair %d is (%d,%d), want (%d,%d)", k, p.ID1, p.ID2, a.ID, b.ID)
		}
		if p.Name1 != a.Name || p.Name2 != b.Name {
			return verifyErr("pair %d names do not match standings", k)
		}
	}
	return nil
}
