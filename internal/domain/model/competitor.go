// Package model contains domain models passed between layers.
package model

// Competitor is a registered participant. The store assigns ID; IDs are
// never reused, even after a reset.
type Competitor struct {
	ID   int64
	Name string
}

// MatchResult is the recorded outcome of one completed match.
type MatchResult struct {
	Winner int64
	Loser  int64
}

// Validate reports whether the result names two distinct, positive ids.
// It does not check that the ids are registered; that needs the store.
func (m MatchResult) Validate() error {
	if m.Winner == m.Loser {
		return ErrSameCompetitor
	}
	if m.Winner <= 0 || m.Loser <= 0 {
		return ErrUnknownCompetitor
	}
	return nil
}

// StandingRow is one competitor's record at a point in time. It is derived
// from match results and never stored.
type StandingRow struct {
	ID      int64
	Name    string
	Wins    int
	Matches int
}

// Losses is the number of matches the competitor lost.
func (r StandingRow) Losses() int { return r.Matches - r.Wins }

// Pairing is one match of the next round.
type Pairing struct {
	ID1   int64
	Name1 string
	ID2   int64
	Name2 string
}

// Has reports whether the competitor plays in this pairing.
func (p Pairing) Has(id int64) bool { return p.ID1 == id || p.ID2 == id }
