package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/regatta/internal/adapters/mq/worker"
	"github.com/okian/regatta/internal/adapters/repository"
	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
)

// Scoreboard computes a regatta's standings from the current store state.
func (s *Service) Scoreboard(ctx context.Context, regattaID string) (types.Scoreboard, error) {
	start := time.Now()
	store, err := s.repo()
	if err != nil {
		return types.Scoreboard{}, err
	}
	g, err := store.Regatta(ctx, regattaID)
	if err != nil {
		return types.Scoreboard{}, fmt.Errorf("scoreboard: %w", err)
	}
	sb, _ := worker.Compute(s.calc, g, s.roster(ctx, store), start)
	return sb, nil
}

// Scoreboards computes every regatta's standings concurrently, most recent
// regatta first.
func (s *Service) Scoreboards(ctx context.Context) ([]types.Scoreboard, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	regattas, err := store.Regattas(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoreboards: %w", err)
	}
	roster := s.roster(ctx, store)

	boards := make([]types.Scoreboard, len(regattas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, reg := range regattas {
		i, reg := i, reg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			boards[i], _ = worker.Compute(s.calc, reg, roster, time.Now())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoreboards: %w", err)
	}
	return boards, nil
}

// roster degrades to an empty roster when it cannot be read, which yields
// a scoreboard with no rows.
func (s *Service) roster(ctx context.Context, store repository.Store) model.Roster {
	roster, err := store.Roster(ctx)
	if err != nil {
		s.logger.Warn(ctx, "roster unavailable, scoring without skippers", logger.Error(err))
		return nil
	}
	return roster
}
