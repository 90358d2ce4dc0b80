// Package service provides the tournament service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/swiss/internal/adapters/repository"
	"github.com/okian/swiss/internal/domain/dedupe"
	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/internal/domain/pairing"
	"github.com/okian/swiss/internal/domain/standings"
	"github.com/okian/swiss/pkg/logger"
	"github.com/okian/swiss/pkg/metrics"
)

// Service runs a Swiss-system tournament on top of a repository.Store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper

	// Configuration
	driver     string
	dedupeSize int

	// State
	started bool

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the store holding competitors and match results.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDriverName records which store driver backs the service.
func WithDriverName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.driver = name
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. The process-wide manager is used by default.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a new Service. Without WithStore an in-memory store is used.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize: 10_000,
		metrics:    metrics.Global(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.driver = "memory"
	}
	if s.driver == "" {
		s.driver = "custom"
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.deduper = dedupe.NewWindow(dedupe.WithMaxSize(s.dedupeSize))

	return s
}

// Start marks the service as running and publishes the current competitor count.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	n, err := s.store.CountCompetitors(ctx)
	if err != nil {
		return model.StoreFailure("start", err)
	}
	s.metrics.UpdateCompetitors(n)

	s.started = true
	s.logger.Info(ctx, "tournament service started",
		logger.String("store", s.driver),
		logger.Int("competitors", n),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop marks the service as stopped and closes the store when it supports it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping tournament service...")
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "tournament service stopped")
}

// observe records latency and failure of a store-backed operation. It is
// deferred with the address of the named error result.
func (s *Service) observe(op string, start time.Time, errp *error) {
	err := *errp
	if model.IsPrecondition(err) {
		err = nil
	}
	s.metrics.RecordStoreOperation(op, msSince(start), err)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// ResetAll removes every match result and every competitor. Ids handed out
// before the reset are not reused.
func (s *Service) ResetAll(ctx context.Context) (err error) {
	defer s.observe("reset_all", time.Now(), &err)

	if r, ok := s.store.(repository.Resetter); ok {
		err = r.ResetAll(ctx)
	} else {
		err = s.store.ResetMatches(ctx)
		if err == nil {
			err = s.store.ResetCompetitors(ctx)
		}
	}
	if err != nil {
		err = model.StoreFailure("reset all", err)
		s.logger.Error(ctx, "reset failed", logger.Error(err))
		return err
	}

	// Keys of reports against the old ids must not shadow reports of the new tournament.
	s.deduper.Clear(ctx)
	s.metrics.RecordReset()
	s.metrics.UpdateCompetitors(0)
	s.logger.Info(ctx, "tournament reset")
	return nil
}

// CountCompetitors returns the number of registered competitors.
func (s *Service) CountCompetitors(ctx context.Context) (n int, err error) {
	defer s.observe("count_competitors", time.Now(), &err)

	n, err = s.store.CountCompetitors(ctx)
	if err != nil {
		return 0, model.StoreFailure("count competitors", err)
	}
	s.metrics.UpdateCompetitors(n)
	return n, nil
}

// RegisterCompetitor adds a competitor with no recorded matches.
func (s *Service) RegisterCompetitor(ctx context.Context, name string) (c model.Competitor, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.RecordPreconditionViolation("register_competitor")
		return model.Competitor{}, model.ErrEmptyName
	}

	defer s.observe("register_competitor", time.Now(), &err)

	id, err := s.store.AddCompetitor(ctx, name)
	if err != nil {
		return model.Competitor{}, model.StoreFailure("register competitor", err)
	}

	s.metrics.RecordCompetitorRegistered()
	s.logger.Debug(ctx, "competitor registered",
		logger.Int64("id", id),
		logger.String("name", name),
	)
	return model.Competitor{ID: id, Name: name}, nil
}

// ReportMatch records that winner beat loser. Preconditions are checked
// before anything is written.
func (s *Service) ReportMatch(ctx context.Context, winner, loser int64) (res model.MatchResult, err error) {
	res = model.MatchResult{Winner: winner, Loser: loser}
	if err = res.Validate(); err != nil {
		s.rejectMatch(ctx, res, err)
		return model.MatchResult{}, err
	}

	defer s.observe("report_match", time.Now(), &err)

	for _, id := range []int64{winner, loser} {
		found, lookupErr := s.store.HasCompetitor(ctx, id)
		if lookupErr != nil {
			err = model.StoreFailure("report match", lookupErr)
			return model.MatchResult{}, err
		}
		if !found {
			err = model.ErrUnknownCompetitor
			s.rejectMatch(ctx, res, err)
			return model.MatchResult{}, err
		}
	}

	if err = s.store.RecordMatch(ctx, winner, loser); err != nil {
		err = model.StoreFailure("report match", err)
		if model.IsPrecondition(err) {
			s.rejectMatch(ctx, res, err)
		}
		return model.MatchResult{}, err
	}

	s.metrics.RecordMatchReported()
	s.logger.Debug(ctx, "match reported",
		logger.Int64("winner", winner),
		logger.Int64("loser", loser),
	)
	return res, nil
}

func (s *Service) rejectMatch(ctx context.Context, res model.MatchResult, err error) {
	s.metrics.RecordPreconditionViolation("report_match")
	s.logger.Warn(ctx, "match report rejected",
		logger.Int64("winner", res.Winner),
		logger.Int64("loser", res.Loser),
		logger.Error(err),
	)
}

// Standings returns every competitor once, ordered by wins descending and
// then by id.
func (s *Service) Standings(ctx context.Context) (rows []model.StandingRow, err error) {
	defer s.observe("standings", time.Now(), &err)

	rows, err = standings.Compute(ctx, s.store)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStandingsComputed()
	return rows, nil
}

// Pairings pairs adjacent competitors of the current standings.
func (s *Service) Pairings(ctx context.Context) (pairs []model.Pairing, err error) {
	defer s.observe("pairings", time.Now(), &err)

	pairs, err = pairing.Compute(ctx, s.store)
	if err != nil {
		if model.IsPrecondition(err) {
			s.metrics.RecordPreconditionViolation("pairings")
			s.logger.Warn(ctx, "pairings rejected", logger.Error(err))
		}
		return nil, err
	}
	s.metrics.RecordPairingsComputed()
	return pairs, nil
}

// SeenAndRecord atomically checks if an idempotency key was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		s.metrics.RecordDuplicateReport()
	}
	return seen
}

// Unrecord forgets an idempotency key, allowing the request to be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"store":           s.driver,
		"dedupeSize":      s.dedupeSize,
		"idempotencyKeys": s.deduper.Size(),
	}

	if n, err := s.store.CountCompetitors(ctx); err == nil {
		stats["competitors"] = n
		s.metrics.UpdateCompetitors(n)
	} else {
		stats["storeError"] = err.Error()
	}
	return stats
}
