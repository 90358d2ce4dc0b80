// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/pkg/logger"
)

const defaultMaxRequestBytes = 1 << 16

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	IdempotencyKeys
	StatsProvider

	ResetAll(ctx context.Context) error
	CountCompetitors(ctx context.Context) (int, error)
	RegisterCompetitor(ctx context.Context, name string) (model.Competitor, error)
	ReportMatch(ctx context.Context, winner, loser int64) (model.MatchResult, error)
	Standings(ctx context.Context) ([]model.StandingRow, error)
	Pairings(ctx context.Context) ([]model.Pairing, error)
}

// IdempotencyKeys remembers Idempotency-Key headers of match reports.
type IdempotencyKeys interface {
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	resetHandler       *ResetHandler
	competitorsHandler *CompetitorsHandler
	matchesHandler     *MatchesHandler
	standingsHandler   *StandingsHandler
	pairingsHandler    *PairingsHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxRequestBytes int64
	logger          logger.Logger
}

// WithMaxRequestBytes caps the size of JSON request bodies.
func WithMaxRequestBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxRequestBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxRequestBytes: defaultMaxRequestBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		resetHandler:       NewResetHandler(deps),
		competitorsHandler: NewCompetitorsHandler(deps, o.maxRequestBytes),
		matchesHandler:     NewMatchesHandler(deps, o.maxRequestBytes, o.logger),
		standingsHandler:   NewStandingsHandler(deps),
		pairingsHandler:    NewPairingsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestID(MetricsMiddleware(h, endpoint)))
	}

	handle("/healthz", "healthz", s.healthHandler.HandleHealth)
	handle("/stats", "stats", s.statsHandler.HandleStats)
	handle("/reset", "reset", s.resetHandler.HandleReset)
	handle("/competitors/count", "competitors_count", s.competitorsHandler.HandleCount)
	handle("/competitors", "competitors", s.competitorsHandler.HandleRegister)
	handle("/matches", "matches", s.matchesHandler.HandlePostMatch)
	handle("/standings", "standings", s.standingsHandler.HandleGetStandings)
	handle("/pairings", "pairings", s.pairingsHandler.HandleGetPairings)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service error to its HTTP status.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if model.IsPrecondition(err) {
		writeError(w, http.StatusUnprocessableEntity, "precondition_failed", WrapKind(op, ErrPrecondition, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}

// decodeJSON reads a single JSON object of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
