package api

import (
	"context"
	"net/http"

	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/internal/domain/types"
)

// PairingsDependencies defines the interface for pairing queries.
type PairingsDependencies interface {
	Pairings(ctx context.Context) ([]model.Pairing, error)
}

// PairingsHandler handles pairing requests.
type PairingsHandler struct {
	deps PairingsDependencies
}

// NewPairingsHandler creates a new pairings handler.
func NewPairingsHandler(deps PairingsDependencies) *PairingsHandler {
	return &PairingsHandler{deps: deps}
}

// HandleGetPairings handles GET /pairings requests. An odd number of
// competitors yields 422.
func (h *PairingsHandler) HandleGetPairings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pairings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pairs, err := h.deps.Pairings(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromPairings(pairs))
}
