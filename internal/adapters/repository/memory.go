package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/swiss/internal/domain/model"
)

// MemoryStore keeps competitors and results in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	lastID      int64
	competitors map[int64]model.Competitor
	matches     []model.MatchResult
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		competitors: make(map[int64]model.Competitor),
	}
}

// AddCompetitor implements Store.
func (m *MemoryStore) AddCompetitor(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	m.competitors[m.lastID] = model.Competitor{ID: m.lastID, Name: name}
	return m.lastID, nil
}

// RecordMatch implements Store. It enforces the same rules as the SQL schema.
func (m *MemoryStore) RecordMatch(ctx context.Context, winnerID, loserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if winnerID == loserID {
		return ErrSameCompetitor
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.competitors[winnerID]; !ok {
		return ErrCompetitorNotFound
	}
	if _, ok := m.competitors[loserID]; !ok {
		return ErrCompetitorNotFound
	}
	m.matches = append(m.matches, model.MatchResult{Winner: winnerID, Loser: loserID})
	return nil
}

// HasCompetitor implements Store.
func (m *MemoryStore) HasCompetitor(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.competitors[id]
	return ok, nil
}

// CountCompetitors implements Store.
func (m *MemoryStore) CountCompetitors(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.competitors), nil
}

// ResetMatches implements Store.
func (m *MemoryStore) ResetMatches(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = nil
	return nil
}

// ResetCompetitors implements Store. The id sequence is kept so ids are
// never handed out twice.
func (m *MemoryStore) ResetCompetitors(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competitors = make(map[int64]model.Competitor)
	return nil
}

// ResetAll implements Resetter.
func (m *MemoryStore) ResetAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = nil
	m.competitors = make(map[int64]model.Competitor)
	return nil
}

// AllStandingsRaw implements Store.
func (m *MemoryStore) AllStandingsRaw(ctx context.Context) ([]model.StandingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := make(map[int64]*model.StandingRow, len(m.competitors))
	rows := make([]model.StandingRow, 0, len(m.competitors))
	for _, c := range m.competitors {
		rows = append(rows, model.StandingRow{ID: c.ID, Name: c.Name})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	for i := range rows {
		index[rows[i].ID] = &rows[i]
	}

	for _, res := range m.matches {
		if w := index[res.Winner]; w != nil {
			w.Wins++
			w.Matches++
		}
		if l := index[res.Loser]; l != nil {
			l.Matches++
		}
	}
	return rows, nil
}

// Close implements io.Closer; there is nothing to release.
func (m *MemoryStore) Close() error { return nil }

var (
	_ Store    = (*MemoryStore)(nil)
	_ Resetter = (*MemoryStore)(nil)
)
