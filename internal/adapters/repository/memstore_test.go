package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/regatta/internal/domain/model"
)

var fixedNow = time.Date(2025, 4, 19, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewMemStore(ctx, WithClock(func() time.Time { return fixedNow }))
}

func mustRegatta(t *testing.T, s *MemStore, name string, date time.Time) *model.Regatta {
	t.Helper()
	g, err := model.NewRegatta(name, "Filby", date)
	if err != nil {
		t.Fatalf("new regatta: %v", err)
	}
	if err := s.CreateRegatta(context.Background(), g); err != nil {
		t.Fatalf("create regatta: %v", err)
	}
	return g
}

func TestMemStore_Skippers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, name := range []string{"Neil", "Ivy", "Diana"} {
		sk := model.Skipper{ID: fmt.Sprintf("s%d", i), Name: name, SailNumber: fmt.Sprint(100 + i)}
		if err := s.CreateSkipper(ctx, sk); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	if err := s.CreateSkipper(ctx, model.Skipper{ID: "s0", Name: "dup"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	roster, err := s.Roster(ctx)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 3 || roster[0].Name != "Neil" || roster[2].Name != "Diana" {
		t.Errorf("roster not in creation order: %+v", roster)
	}

	if err := s.UpdateSkipper(ctx, model.Skipper{ID: "s1", Name: "Ivy King", SailNumber: "110"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Skipper(ctx, "s1")
	if err != nil || got.Name != "Ivy King" || got.SailNumber != "110" {
		t.Errorf("unexpected skipper after update: %+v, %v", got, err)
	}
	if err := s.UpdateSkipper(ctx, model.Skipper{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	found, _ := s.FindSkippers(ctx, func(sk model.Skipper) bool { return sk.SailNumber == "102" })
	if len(found) != 1 || found[0].ID != "s2" {
		t.Errorf("unexpected find result: %+v", found)
	}

	if err := s.DeleteSkipper(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Skipper(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSkipper(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if c := s.Count(ctx); c.Skippers != 2 {
		t.Errorf("expected 2 skippers, got %d", c.Skippers)
	}
}

func TestMemStore_RegattasOrderedByDateDesc(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := mustRegatta(t, s, "Winter", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	recent := mustRegatta(t, s, "Spring", time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC))

	list, err := s.Regattas(ctx)
	if err != nil {
		t.Fatalf("regattas: %v", err)
	}
	if len(list) != 2 || list[0].ID != recent.ID || list[1].ID != old.ID {
		t.Errorf("expected most recent first, got %s then %s", list[0].Name, list[1].Name)
	}

	if err := s.CreateRegatta(ctx, recent); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := s.DeleteRegatta(ctx, old.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Regatta(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_Races(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	g := mustRegatta(t, s, "Spring", fixedNow)

	r := model.NewRace(time.Time{})
	if err := s.AddRace(ctx, g.ID, r); err != nil {
		t.Fatalf("add race: %v", err)
	}
	if !r.CreatedAt.Equal(fixedNow) || r.RegattaID != g.ID {
		t.Errorf("race not stamped: %v %q", r.CreatedAt, r.RegattaID)
	}
	if err := s.AddRace(ctx, g.ID, r); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := s.AddRace(ctx, "missing", model.NewRace(fixedNow)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	updated, err := s.UpdateRace(ctx, g.ID, r.ID, func(race *model.Race) error {
		race.SetFinishingOrder([]string{"a", "b"})
		race.SetStatus("b", model.StatusDNF)
		race.ID = "hijack"
		return nil
	})
	if err != nil {
		t.Fatalf("update race: %v", err)
	}
	if updated.ID != r.ID || updated.StatusOf("b") != model.StatusDNF {
		t.Errorf("unexpected updated race: %+v", updated)
	}

	boom := errors.New("boom")
	if _, err := s.UpdateRace(ctx, g.ID, r.ID, func(race *model.Race) error {
		race.SetFinishingOrder(nil)
		return boom
	}); !errors.Is(err, boom) {
		t.Errorf("expected fn error, got %v", err)
	}
	snap, _ := s.Regatta(ctx, g.ID)
	stored, _ := snap.Race(r.ID)
	if len(stored.FinishingOrder()) != 2 {
		t.Errorf("failed update must not be applied, order=%v", stored.FinishingOrder())
	}

	if _, err := s.UpdateRace(ctx, g.ID, "missing", func(*model.Race) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if c := s.Count(ctx); c.Races != 1 || c.Regattas != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
	if err := s.DeleteRace(ctx, g.ID, r.ID); err != nil {
		t.Fatalf("delete race: %v", err)
	}
	if err := s.DeleteRace(ctx, g.ID, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_RaceStampsIncrease(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	g := mustRegatta(t, s, "Spring", fixedNow)

	var ids []string
	for i := 0; i < 5; i++ {
		r := model.NewRace(time.Time{})
		if err := s.AddRace(ctx, g.ID, r); err != nil {
			t.Fatalf("add race: %v", err)
		}
		if want := fixedNow.Add(time.Duration(i)); !r.CreatedAt.Equal(want) {
			t.Errorf("race %d stamped %v, want %v", i+1, r.CreatedAt, want)
		}
		ids = append(ids, r.ID)
	}

	snap, _ := s.Regatta(ctx, g.ID)
	for i, id := range ids {
		if n := snap.RaceNumber(id); n != i+1 {
			t.Errorf("race %s numbered %d, want %d", id, n, i+1)
		}
	}

	imported, _ := model.NewRegatta("Autumn", "Filby", fixedNow)
	imported.AddRace(model.NewRace(time.Time{}))
	imported.AddRace(model.NewRace(time.Time{}))
	if err := s.CreateRegatta(ctx, imported); err != nil {
		t.Fatalf("create regatta: %v", err)
	}
	snap, _ = s.Regatta(ctx, imported.ID)
	if snap.Races[0].CreatedAt.Equal(snap.Races[1].CreatedAt) {
		t.Errorf("imported races share a stamp: %v", snap.Races[0].CreatedAt)
	}
	if snap.RaceNumber(imported.Races[1].ID) != 2 {
		t.Errorf("imported races lost their order")
	}
}

func TestMemStore_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	g := mustRegatta(t, s, "Spring", fixedNow)
	if err := s.AddRace(ctx, g.ID, model.NewRace(fixedNow)); err != nil {
		t.Fatalf("add race: %v", err)
	}

	snap, _ := s.Regatta(ctx, g.ID)
	snap.Races[0].SetFinishingOrder([]string{"x"})
	snap.Name = "changed"

	again, _ := s.Regatta(ctx, g.ID)
	if again.Name != "Spring" || again.Races[0].IsCompleted() {
		t.Errorf("snapshot mutation leaked into store")
	}

	// Mutating the regatta passed to CreateRegatta must not leak either.
	g.Name = "leaked"
	again, _ = s.Regatta(ctx, g.ID)
	if again.Name != "Spring" {
		t.Errorf("caller mutation leaked into store")
	}
}

func TestMemStore_DeletingSkipperKeepsRaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := model.Skipper{ID: "a", Name: "A"}
	b := model.Skipper{ID: "b", Name: "B"}
	_ = s.CreateSkipper(ctx, a)
	_ = s.CreateSkipper(ctx, b)
	g := mustRegatta(t, s, "Spring", fixedNow)
	_ = s.AddRace(ctx, g.ID, model.NewRace(fixedNow, a, b))

	_ = s.DeleteSkipper(ctx, "a")

	snap, _ := s.Regatta(ctx, g.ID)
	if order := snap.Races[0].FinishingOrder(); len(order) != 2 {
		t.Errorf("race order changed after skipper delete: %v", order)
	}
	roster, _ := s.Roster(ctx)
	if got := snap.Races[0].ResolveFinishingOrder(roster); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("unexpected resolution: %+v", got)
	}
}

func TestMemStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_ = s.CreateSkipper(ctx, model.Skipper{ID: "a", Name: "A"})
	mustRegatta(t, s, "Spring", fixedNow)

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if c := s.Count(ctx); c != (Counts{}) {
		t.Errorf("expected empty store, got %+v", c)
	}
}

func TestMemStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	g := mustRegatta(t, s, "Spring", fixedNow)
	r := model.NewRace(fixedNow)
	if err := s.AddRace(ctx, g.ID, r); err != nil {
		t.Fatalf("add race: %v", err)
	}

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			_ = s.CreateSkipper(ctx, model.Skipper{ID: id, Name: id})
			_, _ = s.UpdateRace(ctx, g.ID, r.ID, func(race *model.Race) error {
				race.SetFinishingOrder(append(race.FinishingOrder(), id))
				return nil
			})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Roster(ctx)
			_, _ = s.Regattas(ctx)
		}()
	}
	wg.Wait()

	snap, _ := s.Regatta(ctx, g.ID)
	if n := len(snap.Races[0].FinishingOrder()); n != goroutines {
		t.Errorf("expected %d finishers, got %d", goroutines, n)
	}
	if c := s.Count(ctx); c.Skippers != goroutines {
		t.Errorf("expected %d skippers, got %d", goroutines, c.Skippers)
	}
}
