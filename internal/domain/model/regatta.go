package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Regatta is an event that exclusively owns its races.
type Regatta struct {
	ID       string
	Name     string
	Location string
	Date     time.Time
	Races    []*Race
}

// NewRegatta creates an event with no races.
func NewRegatta(name, location string, date time.Time) (*Regatta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Regatta{
		ID:       uuid.NewString(),
		Name:     name,
		Location: strings.TrimSpace(location),
		Date:     date,
	}, nil
}

// AddRace attaches r to the regatta.
func (g *Regatta) AddRace(r *Race) {
	r.RegattaID = g.ID
	g.Races = append(g.Races, r)
}

// OrderedRaces returns the races sorted by creation time. Insertion order is
// never used; equal timestamps fall back to the race ID.
func (g *Regatta) OrderedRaces() []*Race {
	return OrderRaces(g.Races)
}

// OrderRaces sorts a copy of races into creation order.
func OrderRaces(races []*Race) []*Race {
	out := make([]*Race, len(races))
	copy(out, races)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RaceNumber returns the 1-based creation-order number of the race, or 0.
func (g *Regatta) RaceNumber(raceID string) int {
	for i, r := range g.OrderedRaces() {
		if r.ID == raceID {
			return i + 1
		}
	}
	return 0
}

// Race finds a race by ID.
func (g *Regatta) Race(raceID string) (*Race, bool) {
	for _, r := range g.Races {
		if r.ID == raceID {
			return r, true
		}
	}
	return nil, false
}

// RemoveRace detaches a race, reporting whether it was present.
func (g *Regatta) RemoveRace(raceID string) bool {
	for i, r := range g.Races {
		if r.ID == raceID {
			g.Races = append(g.Races[:i], g.Races[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy including every race.
func (g *Regatta) Clone() *Regatta {
	if g == nil {
		return nil
	}
	c := &Regatta{
		ID:       g.ID,
		Name:     g.Name,
		Location: g.Location,
		Date:     g.Date,
		Races:    make([]*Race, len(g.Races)),
	}
	for i, r := range g.Races {
		c.Races[i] = r.Clone()
	}
	return c
}
