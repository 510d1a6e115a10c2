// Package sheet reads and writes regatta results as YAML documents and
// renders scoreboards as text tables.
package sheet

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/regatta/internal/domain/model"
)

// Sheet is a whole regatta in one document.
type Sheet struct {
	Regatta  Regatta   `yaml:"regatta"`
	Skippers []Skipper `yaml:"skippers"`
	Races    []Race    `yaml:"races"`
}

// Regatta holds the event header. Date is YYYY-MM-DD or RFC3339.
type Regatta struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location,omitempty"`
	Date     string `yaml:"date"`
}

// Skipper is one roster entry. ID is referenced by races.
type Skipper struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Sail string `yaml:"sail,omitempty"`
}

// Race lists skipper IDs in finishing order, plus DNS/DNF statuses.
type Race struct {
	Finish []string          `yaml:"finish"`
	Status map[string]string `yaml:"status,omitempty"`
}

// Decode reads one sheet.
func Decode(r io.Reader) (*Sheet, error) {
	var s Sheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode sheet: %w", err)
	}
	return &s, nil
}

// Encode writes s as YAML with two-space indentation.
func Encode(w io.Writer, s *Sheet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidSheet, raw)
	}
	return t, nil
}

// ToDomain builds the regatta and roster. Races are stamped one second
// apart from the regatta date so creation order follows sheet order.
func (s *Sheet) ToDomain() (*model.Regatta, model.Roster, error) {
	date, err := ParseDate(s.Regatta.Date)
	if err != nil {
		return nil, nil, err
	}
	g, err := model.NewRegatta(s.Regatta.Name, s.Regatta.Location, date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: regatta: %w", ErrInvalidSheet, err)
	}

	roster := make(model.Roster, 0, len(s.Skippers))
	known := make(map[string]struct{}, len(s.Skippers))
	for i, sk := range s.Skippers {
		id := strings.TrimSpace(sk.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("%w: skipper %d has no id", ErrInvalidSheet, i+1)
		}
		if _, dup := known[id]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate skipper id %q", ErrInvalidSheet, id)
		}
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			return nil, nil, fmt.Errorf("%w: skipper %q: %w", ErrInvalidSheet, id, model.ErrEmptyName)
		}
		known[id] = struct{}{}
		roster = append(roster, model.Skipper{ID: id, Name: name, SailNumber: strings.TrimSpace(sk.Sail)})
	}

	for i, rs := range s.Races {
		r := model.NewRace(date.Add(time.Duration(i) * time.Second))
		finished := make(map[string]struct{}, len(rs.Finish))
		for _, id := range rs.Finish {
			if _, ok := known[id]; !ok {
				return nil, nil, fmt.Errorf("race %d: %w %q", i+1, ErrUnknownSkipper, id)
			}
			if _, dup := finished[id]; dup {
				return nil, nil, fmt.Errorf("%w: race %d: %w %q", ErrInvalidSheet, i+1, model.ErrDuplicateSkipper, id)
			}
			finished[id] = struct{}{}
		}
		r.SetFinishingOrder(rs.Finish)
		for id, raw := range rs.Status {
			if _, ok := known[id]; !ok {
				return nil, nil, fmt.Errorf("race %d: %w %q", i+1, ErrUnknownSkipper, id)
			}
			st, err := model.ParseStatus(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("race %d: %w", i+1, err)
			}
			r.SetStatus(id, st)
		}
		g.AddRace(r)
	}
	return g, roster, nil
}

// FromDomain renders a regatta and roster as a sheet. Only DNS and DNF
// statuses are written.
func FromDomain(g *model.Regatta, roster model.Roster) *Sheet {
	s := &Sheet{
		Regatta: Regatta{
			Name:     g.Name,
			Location: g.Location,
			Date:     g.Date.Format(time.DateOnly),
		},
		Skippers: make([]Skipper, len(roster)),
	}
	for i, sk := range roster {
		s.Skippers[i] = Skipper{ID: sk.ID, Name: sk.Name, Sail: sk.SailNumber}
	}
	for _, r := range g.OrderedRaces() {
		rs := Race{Finish: r.FinishingOrder()}
		for id, st := range r.Statuses() {
			if !st.IsAbsence() {
				continue
			}
			if rs.Status == nil {
				rs.Status = make(map[string]string)
			}
			rs.Status[id] = string(st)
		}
		s.Races = append(s.Races, rs)
	}
	return s
}
