package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
)

// Regattas returns every regatta, most recent first.
func (s *Service) Regattas(ctx context.Context) ([]*model.Regatta, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.Regattas(ctx)
}

// Regatta returns one regatta with its races.
func (s *Service) Regatta(ctx context.Context, id string) (*model.Regatta, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.Regatta(ctx, id)
}

// CreateRegatta creates an event with no races.
func (s *Service) CreateRegatta(ctx context.Context, name, location string, date time.Time) (*model.Regatta, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	g, err := model.NewRegatta(name, location, date)
	if err != nil {
		return nil, err
	}
	if err := store.CreateRegatta(ctx, g); err != nil {
		return nil, fmt.Errorf("create regatta: %w", err)
	}
	s.notify(ctx, g.ID, "regatta_created")
	return g, nil
}

// DeleteRegatta removes an event and all of its races.
func (s *Service) DeleteRegatta(ctx context.Context, id string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	if err := store.DeleteRegatta(ctx, id); err != nil {
		return fmt.Errorf("delete regatta: %w", err)
	}
	s.logger.Info(ctx, "regatta deleted", logger.String("regatta", id))
	return nil
}

// AddRace appends a race to a regatta. With no finishers it is an unsailed
// race that counts as uncompleted until results are saved.
func (s *Service) AddRace(ctx context.Context, regattaID string, finishers []string, absent []model.Absence) (types.RaceView, error) {
	store, err := s.repo()
	if err != nil {
		return types.RaceView{}, err
	}
	r := model.NewRace(time.Time{})
	if err := r.ApplyResults(finishers, absent); err != nil {
		return types.RaceView{}, err
	}
	if err := store.AddRace(ctx, regattaID, r); err != nil {
		return types.RaceView{}, fmt.Errorf("add race: %w", err)
	}
	s.notify(ctx, regattaID, "race_added")
	return s.raceView(ctx, regattaID, r)
}

// SetResults replaces a race's finishing order and statuses in one step.
func (s *Service) SetResults(ctx context.Context, regattaID, raceID string, finishers []string, absent []model.Absence) (types.RaceView, error) {
	store, err := s.repo()
	if err != nil {
		return types.RaceView{}, err
	}
	r, err := store.UpdateRace(ctx, regattaID, raceID, func(r *model.Race) error {
		return r.ApplyResults(finishers, absent)
	})
	if err != nil {
		return types.RaceView{}, fmt.Errorf("set results: %w", err)
	}
	s.notify(ctx, regattaID, "results_saved")
	return s.raceView(ctx, regattaID, r)
}

// SetStatus records one skipper's outcome without touching the order.
func (s *Service) SetStatus(ctx context.Context, regattaID, raceID, skipperID string, status model.Status) (types.RaceView, error) {
	store, err := s.repo()
	if err != nil {
		return types.RaceView{}, err
	}
	r, err := store.UpdateRace(ctx, regattaID, raceID, func(r *model.Race) error {
		r.SetStatus(skipperID, status)
		return nil
	})
	if err != nil {
		return types.RaceView{}, fmt.Errorf("set status: %w", err)
	}
	s.notify(ctx, regattaID, "status_set")
	return s.raceView(ctx, regattaID, r)
}

// DeleteRace removes a race; later races are renumbered.
func (s *Service) DeleteRace(ctx context.Context, regattaID, raceID string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	if err := store.DeleteRace(ctx, regattaID, raceID); err != nil {
		return fmt.Errorf("delete race: %w", err)
	}
	s.notify(ctx, regattaID, "race_deleted")
	return nil
}

// raceView numbers r within its regatta.
func (s *Service) raceView(ctx context.Context, regattaID string, r *model.Race) (types.RaceView, error) {
	store, err := s.repo()
	if err != nil {
		return types.RaceView{}, err
	}
	g, err := store.Regatta(ctx, regattaID)
	if err != nil {
		return types.RaceView{}, err
	}
	return types.NewRaceView(r, g.RaceNumber(r.ID)), nil
}
