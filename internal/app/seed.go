package service

import (
	"context"
	"fmt"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/sheet"
	"github.com/okian/regatta/pkg/logger"
)

// Import loads a regatta sheet. Sheet skippers are matched to roster
// entries by name and sail number; unmatched ones are added with fresh IDs.
// A roster entry is matched at most once per import.
func (s *Service) Import(ctx context.Context, sh *sheet.Sheet) (*model.Regatta, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	parsed, roster, err := sh.ToDomain()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(roster))
	claimed := make(map[string]struct{}, len(roster))
	added := 0
	for _, sk := range roster {
		matches, err := store.FindSkippers(ctx, func(o model.Skipper) bool {
			if _, taken := claimed[o.ID]; taken {
				return false
			}
			return o.Name == sk.Name && o.SailNumber == sk.SailNumber
		})
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		if len(matches) > 0 {
			ids[sk.ID] = matches[0].ID
			claimed[matches[0].ID] = struct{}{}
			continue
		}
		fresh, err := model.NewSkipper(sk.Name, sk.SailNumber)
		if err != nil {
			return nil, err
		}
		if err := store.CreateSkipper(ctx, fresh); err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		ids[sk.ID] = fresh.ID
		claimed[fresh.ID] = struct{}{}
		added++
	}

	g, err := model.NewRegatta(parsed.Name, parsed.Location, parsed.Date)
	if err != nil {
		return nil, err
	}
	for _, r := range parsed.OrderedRaces() {
		g.AddRace(remapRace(r, ids))
	}
	if err := store.CreateRegatta(ctx, g); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	s.logger.Info(ctx, "regatta imported",
		logger.String("regatta", g.ID),
		logger.Int("races", len(g.Races)),
		logger.Int("newSkippers", added),
	)
	if added > 0 {
		s.notifyAll(ctx, store, "regatta_imported")
	} else {
		s.notify(ctx, g.ID, "regatta_imported")
	}
	return g, nil
}

// remapRace copies r with skipper IDs translated through ids.
func remapRace(r *model.Race, ids map[string]string) *model.Race {
	order := r.FinishingOrder()
	for i, id := range order {
		order[i] = ids[id]
	}
	out := model.NewRace(r.CreatedAt)
	out.SetFinishingOrder(order)
	for id, st := range r.Statuses() {
		out.SetStatus(ids[id], st)
	}
	return out
}

// Seed loads the demo regatta.
func (s *Service) Seed(ctx context.Context) (*model.Regatta, error) {
	return s.Import(ctx, sheet.Demo())
}

// Reset clears every skipper and regatta, then loads the demo regatta when
// seed is set.
func (s *Service) Reset(ctx context.Context, seed bool) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Info(ctx, "store reset", logger.Bool("seed", seed))
	if !seed {
		return nil
	}
	if _, err := s.Seed(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
