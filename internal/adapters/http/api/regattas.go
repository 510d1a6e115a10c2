package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/types"
)

// regattaRequest mirrors the OpenAPI schema for POST /regattas.
type regattaRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

func (req regattaRequest) date() (time.Time, error) {
	raw := strings.TrimSpace(req.Date)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrBadRequest)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date; use YYYY-MM-DD or RFC3339", ErrBadRequest)
	}
	return t, nil
}

// regattaResponse is a regatta with its races in creation order.
type regattaResponse struct {
	types.Summary
	Races []types.RaceView `json:"races"`
}

func newRegattaResponse(g *model.Regatta) regattaResponse {
	races := g.OrderedRaces()
	resp := regattaResponse{Summary: types.Summarize(g), Races: make([]types.RaceView, len(races))}
	for i, r := range races {
		resp.Races[i] = types.NewRaceView(r, i+1)
	}
	return resp
}

// RegattaHandler handles event requests.
type RegattaHandler struct {
	deps RegattaDependencies
}

// NewRegattaHandler creates a new regatta handler.
func NewRegattaHandler(deps RegattaDependencies) *RegattaHandler {
	return &RegattaHandler{deps: deps}
}

// HandleList handles GET /regattas, most recent first.
func (h *RegattaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	regattas, err := h.deps.Regattas(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]types.Summary, len(regattas))
	for i, g := range regattas {
		out[i] = types.Summarize(g)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /regattas.
func (h *RegattaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req regattaRequest
	if err := decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	date, err := req.date()
	if err != nil {
		writeFailure(w, err)
		return
	}
	g, err := h.deps.CreateRegatta(r.Context(), req.Name, req.Location, date)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRegattaResponse(g))
}

// HandleGet handles GET /regattas/{id}.
func (h *RegattaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.deps.Regatta(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegattaResponse(g))
}

// HandleDelete handles DELETE /regattas/{id}.
func (h *RegattaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteRegatta(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
