// Package types contains the JSON shapes exchanged over the HTTP API.
package types

import "github.com/okian/swiss/internal/domain/model"

// Competitor is a registered competitor.
type Competitor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Standing is one row of the current standings.
type Standing struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Wins    int    `json:"wins"`
	Matches int    `json:"matches"`
}

// Pair is one pairing for the next round.
type Pair struct {
	ID1   int64  `json:"id1"`
	Name1 string `json:"name1"`
	ID2   int64  `json:"id2"`
	Name2 string `json:"name2"`
}

// Count carries the number of registered competitors.
type Count struct {
	Count int `json:"count"`
}

// NewCompetitor is the body of a registration request.
type NewCompetitor struct {
	Name string `json:"name"`
}

// MatchReport is the body of a match report.
type MatchReport struct {
	WinnerID int64 `json:"winner_id"`
	LoserID  int64 `json:"loser_id"`
}

// FromCompetitor converts a model competitor.
func FromCompetitor(c model.Competitor) Competitor {
	return Competitor{ID: c.ID, Name: c.Name}
}

// FromStandings converts ranked rows, keeping their order.
func FromStandings(rows []model.StandingRow) []Standing {
	out := make([]Standing, len(rows))
	for i, r := range rows {
		out[i] = Standing{ID: r.ID, Name: r.Name, Wins: r.Wins, Matches: r.Matches}
	}
	return out
}

// FromPairings converts pairings, keeping their order.
func FromPairings(pairs []model.Pairing) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = Pair{ID1: p.ID1, Name1: p.Name1, ID2: p.ID2, Name2: p.Name2}
	}
	return out
}
