package api

import (
	"fmt"
	"net/http"
	"strconv"
)

type resetResponse struct {
	Status string `json:"status"`
	Seeded bool   `json:"seeded"`
}

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// HandleReset handles POST /admin/reset?seed=true. It clears every skipper
// and regatta, then optionally loads the demo regatta.
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	seed := false
	if raw := r.URL.Query().Get("seed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: seed must be a boolean", ErrBadRequest))
			return
		}
		seed = v
	}
	if err := h.deps.Reset(r.Context(), seed); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Status: "reset", Seeded: seed})
}
