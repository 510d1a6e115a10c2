package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/regatta/internal/domain/model"
)

// Roster returns every skipper in creation order.
func (s *Service) Roster(ctx context.Context) (model.Roster, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.Roster(ctx)
}

// Skipper returns one skipper.
func (s *Service) Skipper(ctx context.Context, id string) (model.Skipper, error) {
	store, err := s.repo()
	if err != nil {
		return model.Skipper{}, err
	}
	return store.Skipper(ctx, id)
}

// CreateSkipper adds a skipper to the roster. Every scoreboard changes,
// since the penalty is fleet size plus one.
func (s *Service) CreateSkipper(ctx context.Context, name, sailNumber string) (model.Skipper, error) {
	store, err := s.repo()
	if err != nil {
		return model.Skipper{}, err
	}
	sk, err := model.NewSkipper(name, sailNumber)
	if err != nil {
		return model.Skipper{}, err
	}
	if err := store.CreateSkipper(ctx, sk); err != nil {
		return model.Skipper{}, fmt.Errorf("create skipper: %w", err)
	}
	s.notifyAll(ctx, store, "skipper_created")
	return sk, nil
}

// UpdateSkipper renames a skipper or changes the sail number.
func (s *Service) UpdateSkipper(ctx context.Context, sk model.Skipper) (model.Skipper, error) {
	store, err := s.repo()
	if err != nil {
		return model.Skipper{}, err
	}
	sk.Name = strings.TrimSpace(sk.Name)
	sk.SailNumber = strings.TrimSpace(sk.SailNumber)
	if sk.Name == "" {
		return model.Skipper{}, model.ErrEmptyName
	}
	if err := store.UpdateSkipper(ctx, sk); err != nil {
		return model.Skipper{}, fmt.Errorf("update skipper: %w", err)
	}
	s.notifyAll(ctx, store, "skipper_updated")
	return sk, nil
}

// DeleteSkipper removes a skipper from the roster. Their race entries stay
// in place and come back if a skipper with the same ID is re-added.
func (s *Service) DeleteSkipper(ctx context.Context, id string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	if err := store.DeleteSkipper(ctx, id); err != nil {
		return fmt.Errorf("delete skipper: %w", err)
	}
	s.notifyAll(ctx, store, "skipper_deleted")
	return nil
}
