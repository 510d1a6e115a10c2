package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/regatta/internal/domain/model"
)

// resultsRequest is the edit-race form: who finished, in order, and who
// did not start or did not finish.
type resultsRequest struct {
	Finishers []string         `json:"finishers"`
	Absent    []absenceRequest `json:"absent"`
}

type absenceRequest struct {
	SkipperID string `json:"skipper_id"`
	Status    string `json:"status"`
}

func (req resultsRequest) absences() ([]model.Absence, error) {
	out := make([]model.Absence, 0, len(req.Absent))
	for _, a := range req.Absent {
		if a.SkipperID == "" {
			return nil, fmt.Errorf("%w: missing skipper_id", ErrBadRequest)
		}
		st, err := model.ParseStatus(a.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Absence{SkipperID: a.SkipperID, Status: st})
	}
	return out, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

// RaceHandler handles race requests.
type RaceHandler struct {
	deps RaceDependencies
}

// NewRaceHandler creates a new race handler.
func NewRaceHandler(deps RaceDependencies) *RaceHandler {
	return &RaceHandler{deps: deps}
}

// HandleList handles GET /regattas/{id}/races, numbered by creation order.
func (h *RaceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	g, err := h.deps.Regatta(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegattaResponse(g).Races)
}

// HandleCreate handles POST /regattas/{id}/races. The body is optional; an
// empty one adds a race that has not been sailed yet.
func (h *RaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, err)
		return
	}
	absent, err := req.absences()
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.deps.AddRace(r.Context(), chi.URLParam(r, "id"), req.Finishers, absent)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleResults handles PUT /regattas/{id}/races/{raceID}/results.
func (h *RaceHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	absent, err := req.absences()
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.deps.SetResults(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "raceID"), req.Finishers, absent)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleStatus handles PUT /regattas/{id}/races/{raceID}/status/{skipperID}.
// The skipper does not need to be in the finishing order.
func (h *RaceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	st, err := model.ParseStatus(req.Status)
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.deps.SetStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "raceID"), chi.URLParam(r, "skipperID"), st)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /regattas/{id}/races/{raceID}.
func (h *RaceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteRace(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "raceID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
