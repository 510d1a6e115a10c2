package model

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Skipper is a helm on the roster. SailNumber is free-form.
type Skipper struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SailNumber string `json:"sail_number"`
}

// NewSkipper creates a skipper with a fresh identifier.
func NewSkipper(name, sailNumber string) (Skipper, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Skipper{}, ErrEmptyName
	}
	return Skipper{
		ID:         uuid.NewString(),
		Name:       name,
		SailNumber: strings.TrimSpace(sailNumber),
	}, nil
}

// Roster is a snapshot of every known skipper.
type Roster []Skipper

// Len returns the fleet size used for penalty points.
func (r Roster) Len() int { return len(r) }

// Index maps skipper IDs to skippers.
func (r Roster) Index() map[string]Skipper {
	idx := make(map[string]Skipper, len(r))
	for _, s := range r {
		idx[s.ID] = s
	}
	return idx
}

// SortedByName returns a copy ordered by name, then sail number.
func (r Roster) SortedByName() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SailNumber < out[j].SailNumber
	})
	return out
}
