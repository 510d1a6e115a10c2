package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ScoreHandler serves computed scoreboards.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleOne handles GET /regattas/{id}/scores.
func (h *ScoreHandler) HandleOne(w http.ResponseWriter, r *http.Request) {
	sb, err := h.deps.Scoreboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

// HandleAll handles GET /scores, one scoreboard per regatta, most recent
// first.
func (h *ScoreHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	boards, err := h.deps.Scoreboards(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}
