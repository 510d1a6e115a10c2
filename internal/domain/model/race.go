// Package model holds the regatta domain: skippers, races and their results.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Race holds one race's result: a finishing order and, separately, a status
// map keyed by skipper ID. The two are updated independently, so the status
// map may carry stale entries for skippers no longer in the order.
type Race struct {
	ID        string
	RegattaID string
	CreatedAt time.Time

	order    []string
	statuses map[string]Status
}

// NewRace creates a race whose finishers all default to finished.
// Pass no finishers for a race that has not been sailed yet.
func NewRace(createdAt time.Time, finishers ...Skipper) *Race {
	r := &Race{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		statuses:  make(map[string]Status, len(finishers)),
	}
	r.SetFinishingSkippers(finishers...)
	return r
}

// SetFinishingOrder replaces the finishing sequence. Skippers entering the
// order without a status get finished; existing entries are kept, including
// those of skippers that just left the order.
func (r *Race) SetFinishingOrder(ids []string) {
	if r.statuses == nil {
		r.statuses = make(map[string]Status, len(ids))
	}
	r.order = make([]string, len(ids))
	copy(r.order, ids)
	for _, id := range ids {
		if _, ok := r.statuses[id]; !ok {
			r.statuses[id] = StatusFinished
		}
	}
}

// SetFinishingSkippers is SetFinishingOrder for skipper values.
func (r *Race) SetFinishingSkippers(skippers ...Skipper) {
	ids := make([]string, len(skippers))
	for i, s := range skippers {
		ids[i] = s.ID
	}
	r.SetFinishingOrder(ids)
}

// SetStatus records an outcome for any skipper, in the order or not.
func (r *Race) SetStatus(skipperID string, status Status) {
	if r.statuses == nil {
		r.statuses = make(map[string]Status)
	}
	r.statuses[skipperID] = status
}

// SetStatuses replaces the whole status map.
func (r *Race) SetStatuses(statuses map[string]Status) {
	r.statuses = make(map[string]Status, len(statuses))
	for id, st := range statuses {
		r.statuses[id] = st
	}
}

// Absence is a skipper listed after the finishers with a DNS or DNF.
type Absence struct {
	SkipperID string `json:"skipper_id"`
	Status    Status `json:"status"`
}

// ApplyResults saves an edited race as a unit: the finishers, followed by
// the absent skippers, become the new order. Finishers are marked finished
// and absentees get their status. Entries for skippers in neither list are
// left alone.
func (r *Race) ApplyResults(finishers []string, absent []Absence) error {
	seen := make(map[string]struct{}, len(finishers)+len(absent))
	order := make([]string, 0, len(finishers)+len(absent))
	for _, id := range finishers {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSkipper, id)
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	for _, a := range absent {
		if !a.Status.IsAbsence() {
			return fmt.Errorf("%w: %q for %s", ErrNotAbsence, a.Status, a.SkipperID)
		}
		if _, dup := seen[a.SkipperID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSkipper, a.SkipperID)
		}
		seen[a.SkipperID] = struct{}{}
		order = append(order, a.SkipperID)
	}

	for _, id := range finishers {
		r.SetStatus(id, StatusFinished)
	}
	for _, a := range absent {
		r.SetStatus(a.SkipperID, a.Status)
	}
	r.SetFinishingOrder(order)
	return nil
}

// StatusOf returns the skipper's outcome, finished when none was recorded.
func (r *Race) StatusOf(skipperID string) Status {
	if st, ok := r.statuses[skipperID]; ok {
		return st
	}
	return StatusFinished
}

// FinishingOrder returns a copy of the stored skipper IDs.
func (r *Race) FinishingOrder() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Statuses returns a copy of the status map.
func (r *Race) Statuses() map[string]Status {
	out := make(map[string]Status, len(r.statuses))
	for id, st := range r.statuses {
		out[id] = st
	}
	return out
}

// ResolveFinishingOrder maps the stored order onto the roster, skipping IDs
// the roster no longer knows. Nothing is removed from the race itself, so a
// skipper restored to the roster reappears on the next call.
func (r *Race) ResolveFinishingOrder(roster Roster) []Skipper {
	return r.resolve(roster.Index())
}

func (r *Race) resolve(idx map[string]Skipper) []Skipper {
	out := make([]Skipper, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := idx[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ResolveWith is ResolveFinishingOrder against a prebuilt roster index.
func (r *Race) ResolveWith(idx map[string]Skipper) []Skipper {
	return r.resolve(idx)
}

// IsCompleted reports whether any finishing order has been recorded.
func (r *Race) IsCompleted() bool {
	return len(r.order) > 0
}

// Clone returns a deep copy.
func (r *Race) Clone() *Race {
	if r == nil {
		return nil
	}
	c := &Race{
		ID:        r.ID,
		RegattaID: r.RegattaID,
		CreatedAt: r.CreatedAt,
	}
	c.order = r.FinishingOrder()
	c.statuses = r.Statuses()
	return c
}
