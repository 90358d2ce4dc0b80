package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/internal/domain/types"
	"github.com/okian/swiss/pkg/logger"
)

// IdempotencyKeyHeader names the header that makes a match report retry-safe.
const IdempotencyKeyHeader = "Idempotency-Key"

// MatchDependencies defines the interface for match reporting dependencies.
type MatchDependencies interface {
	IdempotencyKeys
	ReportMatch(ctx context.Context, winner, loser int64) (model.MatchResult, error)
}

type matchResponse struct {
	Status   string `json:"status"`
	WinnerID int64  `json:"winner_id,omitempty"`
	LoserID  int64  `json:"loser_id,omitempty"`
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps            MatchDependencies
	maxRequestBytes int64
	logger          logger.Logger
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies, maxRequestBytes int64, l logger.Logger) *MatchesHandler {
	return &MatchesHandler{deps: deps, maxRequestBytes: maxRequestBytes, logger: l}
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.report_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.MatchReport
	if err := decodeJSON(w, r, h.maxRequestBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	// Idempotency check - mark as seen first
	if key != "" && h.deps.SeenAndRecord(ctx, key) {
		h.logger.Debug(ctx, "duplicate match report",
			logger.String("idempotencyKey", key),
			logger.String("requestID", RequestIDFrom(ctx)),
		)
		writeJSON(w, http.StatusOK, matchResponse{Status: "duplicate"})
		return
	}

	res, err := h.deps.ReportMatch(ctx, req.WinnerID, req.LoserID)
	if err != nil {
		// Forget the key so the client can retry
		if key != "" {
			h.deps.Unrecord(ctx, key)
		}
		h.logger.Debug(ctx, "match report failed",
			logger.String("requestID", RequestIDFrom(ctx)),
			logger.Error(err),
		)
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, matchResponse{Status: "recorded", WinnerID: res.Winner, LoserID: res.Loser})
}
