package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/internal/domain/types"
)

// CompetitorDependencies defines the registration operations.
type CompetitorDependencies interface {
	CountCompetitors(ctx context.Context) (int, error)
	RegisterCompetitor(ctx context.Context, name string) (model.Competitor, error)
}

// CompetitorsHandler handles competitor requests.
type CompetitorsHandler struct {
	deps            CompetitorDependencies
	maxRequestBytes int64
}

// NewCompetitorsHandler creates a new competitors handler.
func NewCompetitorsHandler(deps CompetitorDependencies, maxRequestBytes int64) *CompetitorsHandler {
	return &CompetitorsHandler{deps: deps, maxRequestBytes: maxRequestBytes}
}

// HandleRegister handles POST /competitors requests.
func (h *CompetitorsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_competitor"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.NewCompetitor
	if err := decodeJSON(w, r, h.maxRequestBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.RegisterCompetitor(r.Context(), req.Name)
	if errors.Is(err, model.ErrEmptyName) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromCompetitor(c))
}

// HandleCount handles GET /competitors/count requests.
func (h *CompetitorsHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	const op = "api.count_competitors"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := h.deps.CountCompetitors(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Count{Count: n})
}
