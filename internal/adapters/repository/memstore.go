package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemStore is an in-memory Store guarded by a single RWMutex.
type MemStore struct {
	mu sync.RWMutex

	skippers map[string]model.Skipper
	// skipperOrder keeps creation order so the roster is stable across reads.
	skipperOrder []string
	regattas     map[string]*model.Regatta

	now                   func() time.Time
	metricsUpdateInterval time.Duration
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store. A background goroutine refreshes the
// size gauges until ctx is cancelled.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		skippers:              make(map[string]model.Skipper),
		regattas:              make(map[string]*model.Regatta),
		now:                   time.Now,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
}

func notFound(kind, id string) error {
	metrics.RecordErrorByComponent("repository", "not_found")
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// CreateSkipper implements Store.
func (s *MemStore) CreateSkipper(_ context.Context, sk model.Skipper) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skippers[sk.ID]; ok {
		metrics.RecordErrorByComponent("repository", "conflict")
		return fmt.Errorf("skipper %q: %w", sk.ID, ErrConflict)
	}
	s.skippers[sk.ID] = sk
	s.skipperOrder = append(s.skipperOrder, sk.ID)
	return nil
}

// UpdateSkipper implements Store.
func (s *MemStore) UpdateSkipper(_ context.Context, sk model.Skipper) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skippers[sk.ID]; !ok {
		return notFound("skipper", sk.ID)
	}
	s.skippers[sk.ID] = sk
	return nil
}

// DeleteSkipper implements Store.
func (s *MemStore) DeleteSkipper(_ context.Context, id string) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skippers[id]; !ok {
		return notFound("skipper", id)
	}
	delete(s.skippers, id)
	for i, sid := range s.skipperOrder {
		if sid == id {
			s.skipperOrder = append(s.skipperOrder[:i], s.skipperOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Skipper implements Store.
func (s *MemStore) Skipper(_ context.Context, id string) (model.Skipper, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.skippers[id]
	if !ok {
		return model.Skipper{}, notFound("skipper", id)
	}
	return sk, nil
}

// Roster implements Store.
func (s *MemStore) Roster(ctx context.Context) (model.Roster, error) {
	return s.FindSkippers(ctx, nil)
}

// FindSkippers implements Store. A nil pred matches every skipper.
func (s *MemStore) FindSkippers(_ context.Context, pred func(model.Skipper) bool) (model.Roster, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(model.Roster, 0, len(s.skipperOrder))
	for _, id := range s.skipperOrder {
		sk := s.skippers[id]
		if pred == nil || pred(sk) {
			out = append(out, sk)
		}
	}
	return out, nil
}

// CreateRegatta implements Store.
func (s *MemStore) CreateRegatta(_ context.Context, g *model.Regatta) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regattas[g.ID]; ok {
		metrics.RecordErrorByComponent("repository", "conflict")
		return fmt.Errorf("regatta %q: %w", g.ID, ErrConflict)
	}
	c := g.Clone()
	for _, r := range c.Races {
		r.RegattaID = c.ID
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.stamp(c.Races)
		}
	}
	s.regattas[c.ID] = c
	return nil
}

// Regatta implements Store.
func (s *MemStore) Regatta(_ context.Context, id string) (*model.Regatta, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.regattas[id]
	if !ok {
		return nil, notFound("regatta", id)
	}
	return g.Clone(), nil
}

// Regattas implements Store.
func (s *MemStore) Regattas(_ context.Context) ([]*model.Regatta, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	out := make([]*model.Regatta, 0, len(s.regattas))
	for _, g := range s.regattas {
		out = append(out, g.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteRegatta implements Store.
func (s *MemStore) DeleteRegatta(_ context.Context, id string) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regattas[id]; !ok {
		return notFound("regatta", id)
	}
	delete(s.regattas, id)
	return nil
}

// AddRace implements Store. A race without a timestamp is stamped now.
func (s *MemStore) AddRace(_ context.Context, regattaID string, r *model.Race) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.regattas[regattaID]
	if !ok {
		return notFound("regatta", regattaID)
	}
	if _, dup := g.Race(r.ID); dup {
		metrics.RecordErrorByComponent("repository", "conflict")
		return fmt.Errorf("race %q: %w", r.ID, ErrConflict)
	}
	c := r.Clone()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.stamp(g.Races)
	}
	g.AddRace(c)
	r.RegattaID = regattaID
	r.CreatedAt = c.CreatedAt
	return nil
}

// stamp returns the clock reading, moved past the newest of races so
// creation order survives a clock that repeats readings.
func (s *MemStore) stamp(races []*model.Race) time.Time {
	at := s.now()
	for _, r := range races {
		if !r.CreatedAt.Before(at) {
			at = r.CreatedAt.Add(time.Nanosecond)
		}
	}
	return at
}

// UpdateRace implements Store. fn works on a copy that replaces the stored
// race only when fn succeeds.
func (s *MemStore) UpdateRace(_ context.Context, regattaID, raceID string, fn func(*model.Race) error) (*model.Race, error) {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.regattas[regattaID]
	if !ok {
		return nil, notFound("regatta", regattaID)
	}
	for i, r := range g.Races {
		if r.ID != raceID {
			continue
		}
		work := r.Clone()
		if err := fn(work); err != nil {
			return nil, err
		}
		// Identity and ownership are not editable through fn.
		work.ID, work.RegattaID, work.CreatedAt = r.ID, r.RegattaID, r.CreatedAt
		g.Races[i] = work
		return work.Clone(), nil
	}
	return nil, notFound("race", raceID)
}

// DeleteRace implements Store.
func (s *MemStore) DeleteRace(_ context.Context, regattaID, raceID string) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.regattas[regattaID]
	if !ok {
		return notFound("regatta", regattaID)
	}
	if !g.RemoveRace(raceID) {
		return notFound("race", raceID)
	}
	return nil
}

// Reset implements Store.
func (s *MemStore) Reset(_ context.Context) error {
	s.mu.Lock()
	s.skippers = make(map[string]model.Skipper)
	s.skipperOrder = nil
	s.regattas = make(map[string]*model.Regatta)
	s.mu.Unlock()
	s.updateMetrics()
	return nil
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Skippers: len(s.skippers), Regattas: len(s.regattas)}
	for _, g := range s.regattas {
		c.Races += len(g.Races)
	}
	return c
}

// startMetricsUpdater refreshes the domain size gauges periodically.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemStore) updateMetrics() {
	c := s.Count(context.Background())
	metrics.UpdateDomainSize(c.Skippers, c.Regattas, c.Races)
}
