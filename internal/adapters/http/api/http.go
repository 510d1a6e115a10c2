// Package api exposes the regatta service over a JSON REST interface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/regatta/internal/domain/dedupe"
	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper
	SkipperDependencies
	RegattaDependencies
	RaceDependencies
	ScoreDependencies
	AdminDependencies
}

// SkipperDependencies manage the roster.
type SkipperDependencies interface {
	Roster(ctx context.Context) (model.Roster, error)
	Skipper(ctx context.Context, id string) (model.Skipper, error)
	CreateSkipper(ctx context.Context, name, sailNumber string) (model.Skipper, error)
	UpdateSkipper(ctx context.Context, s model.Skipper) (model.Skipper, error)
	DeleteSkipper(ctx context.Context, id string) error
}

// RegattaDependencies manage events.
type RegattaDependencies interface {
	Regattas(ctx context.Context) ([]*model.Regatta, error)
	Regatta(ctx context.Context, id string) (*model.Regatta, error)
	CreateRegatta(ctx context.Context, name, location string, date time.Time) (*model.Regatta, error)
	DeleteRegatta(ctx context.Context, id string) error
}

// RaceDependencies record race results.
type RaceDependencies interface {
	Regatta(ctx context.Context, id string) (*model.Regatta, error)
	AddRace(ctx context.Context, regattaID string, finishers []string, absent []model.Absence) (types.RaceView, error)
	SetResults(ctx context.Context, regattaID, raceID string, finishers []string, absent []model.Absence) (types.RaceView, error)
	SetStatus(ctx context.Context, regattaID, raceID, skipperID string, status model.Status) (types.RaceView, error)
	DeleteRace(ctx context.Context, regattaID, raceID string) error
}

// ScoreDependencies compute scoreboards.
type ScoreDependencies interface {
	Scoreboard(ctx context.Context, regattaID string) (types.Scoreboard, error)
	Scoreboards(ctx context.Context) ([]types.Scoreboard, error)
}

// AdminDependencies expose maintenance operations.
type AdminDependencies interface {
	Reset(ctx context.Context, seed bool) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	skipperHandler *SkipperHandler
	regattaHandler *RegattaHandler
	raceHandler    *RaceHandler
	scoreHandler   *ScoreHandler
	adminHandler   *AdminHandler

	live        http.HandlerFunc
	corsOrigins []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		skipperHandler: NewSkipperHandler(deps),
		regattaHandler: NewRegattaHandler(deps),
		raceHandler:    NewRaceHandler(deps),
		scoreHandler:   NewScoreHandler(deps),
		adminHandler:   NewAdminHandler(deps),
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router holding every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", IdempotencyHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/scores", MetricsMiddleware(s.scoreHandler.HandleAll, "scores"))

	r.Route("/skippers", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.skipperHandler.HandleList, "skippers"))
		r.With(Idempotent(s.deps)).Post("/", MetricsMiddleware(s.skipperHandler.HandleCreate, "skippers"))
		r.Get("/{id}", MetricsMiddleware(s.skipperHandler.HandleGet, "skipper"))
		r.Put("/{id}", MetricsMiddleware(s.skipperHandler.HandleUpdate, "skipper"))
		r.Delete("/{id}", MetricsMiddleware(s.skipperHandler.HandleDelete, "skipper"))
	})

	r.Route("/regattas", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.regattaHandler.HandleList, "regattas"))
		r.With(Idempotent(s.deps)).Post("/", MetricsMiddleware(s.regattaHandler.HandleCreate, "regattas"))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.regattaHandler.HandleGet, "regatta"))
			r.Delete("/", MetricsMiddleware(s.regattaHandler.HandleDelete, "regatta"))
			r.Get("/scores", MetricsMiddleware(s.scoreHandler.HandleOne, "regatta_scores"))
			if s.live != nil {
				r.Get("/live", s.live)
			}

			r.Get("/races", MetricsMiddleware(s.raceHandler.HandleList, "races"))
			r.With(Idempotent(s.deps)).Post("/races", MetricsMiddleware(s.raceHandler.HandleCreate, "races"))
			r.Route("/races/{raceID}", func(r chi.Router) {
				r.Put("/results", MetricsMiddleware(s.raceHandler.HandleResults, "race_results"))
				r.Put("/status/{skipperID}", MetricsMiddleware(s.raceHandler.HandleStatus, "race_status"))
				r.Delete("/", MetricsMiddleware(s.raceHandler.HandleDelete, "race"))
			})
		})
	})

	r.Post("/admin/reset", MetricsMiddleware(s.adminHandler.HandleReset, "admin_reset"))
	return r
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

// writeFailure maps err onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
