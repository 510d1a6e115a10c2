package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/regatta/internal/domain/model"
)

// skipperRequest mirrors the OpenAPI schema for skipper writes.
type skipperRequest struct {
	Name       string `json:"name"`
	SailNumber string `json:"sail_number"`
}

// SkipperHandler handles roster requests.
type SkipperHandler struct {
	deps SkipperDependencies
}

// NewSkipperHandler creates a new skipper handler.
func NewSkipperHandler(deps SkipperDependencies) *SkipperHandler {
	return &SkipperHandler{deps: deps}
}

// HandleList handles GET /skippers, sorted by name.
func (h *SkipperHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roster, err := h.deps.Roster(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster.SortedByName())
}

// HandleCreate handles POST /skippers.
func (h *SkipperHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req skipperRequest
	if err := decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	sk, err := h.deps.CreateSkipper(r.Context(), req.Name, req.SailNumber)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sk)
}

// HandleGet handles GET /skippers/{id}.
func (h *SkipperHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sk, err := h.deps.Skipper(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

// HandleUpdate handles PUT /skippers/{id}.
func (h *SkipperHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req skipperRequest
	if err := decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	sk, err := h.deps.UpdateSkipper(r.Context(), model.Skipper{
		ID:         chi.URLParam(r, "id"),
		Name:       req.Name,
		SailNumber: req.SailNumber,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

// HandleDelete handles DELETE /skippers/{id}. Races keep the skipper's
// entries; they just stop resolving.
func (h *SkipperHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSkipper(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
