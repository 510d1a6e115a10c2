// Package scoring computes low-point fleet racing scores with absence
// penalties and discarded results.
package scoring

import (
	"sort"
	"strconv"

	"github.com/okian/regatta/internal/domain/model"
)

// One result is discarded for every discardEvery races, once at least that
// many races exist.
const discardEvery = 5

// Score is one skipper's derived standing in a regatta.
type Score struct {
	SkipperID            string `json:"skipper_id"`
	SkipperName          string `json:"skipper_name"`
	SailNumber           string `json:"sail_number"`
	TotalPoints          int    `json:"total_points"`
	PositionsPerRace     []int  `json:"positions_per_race"`
	DiscardedRaceIndices []int  `json:"discarded_race_indices"`
	HasAbsencePenalty    bool   `json:"has_absence_penalty"`
}

// IsDiscarded reports whether race index i was dropped from the total.
func (s Score) IsDiscarded(i int) bool {
	for _, d := range s.DiscardedRaceIndices {
		if d == i {
			return true
		}
	}
	return false
}

// Result is the output of one computation.
type Result struct {
	Scores           []Score `json:"scores"`
	UncompletedRaces []int   `json:"uncompleted_race_indices"`
	DiscardCount     int     `json:"discard_count"`
}

// Calculator computes scores for a regatta. Implementations must be pure:
// the same races and roster always give the same Result.
type Calculator interface {
	// ComputeScores scores races, which must already be in creation order,
	// against the full roster.
	ComputeScores(races []*model.Race, roster model.Roster) Result
}

// LowPointCalculator implements Calculator with low-point scoring: a
// finisher scores its position, an absent skipper scores fleet size plus one.
type LowPointCalculator struct {
	tieBreak TieBreak
}

// NewCalculator creates a low-point calculator with configuration options.
func NewCalculator(opts ...Option) *LowPointCalculator {
	c := &LowPointCalculator{tieBreak: TieBreakSailNumber}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TieBreak returns the configured tie-break key.
func (c *LowPointCalculator) TieBreak() TieBreak { return c.tieBreak }

// DiscardCount returns how many worst results are dropped for raceCount races.
func DiscardCount(raceCount int) int {
	if raceCount < discardEvery {
		return 0
	}
	return raceCount / discardEvery
}

// PenaltyPoints is the score for DNS, DNF and no-show.
func PenaltyPoints(rosterSize int) int {
	return rosterSize + 1
}

type tally struct {
	points  []int
	absence bool
}

// ComputeScores implements Calculator.
func (c *LowPointCalculator) ComputeScores(races []*model.Race, roster model.Roster) Result {
	res := Result{
		Scores:           []Score{},
		UncompletedRaces: []int{},
		DiscardCount:     DiscardCount(len(races)),
	}

	idx := roster.Index()
	penalty := PenaltyPoints(roster.Len())
	tallies := make(map[string]*tally, roster.Len())
	for _, s := range roster {
		tallies[s.ID] = &tally{points: make([]int, 0, len(races))}
	}

	for i, race := range races {
		if race == nil {
			race = &model.Race{}
		}
		finishers := race.ResolveWith(idx)
		if len(finishers) == 0 {
			res.UncompletedRaces = append(res.UncompletedRaces, i)
		}

		// Absent skippers still occupy their slot in the sequence.
		positions := make(map[string]int, len(finishers))
		for pos, s := range finishers {
			if race.StatusOf(s.ID) == model.StatusFinished {
				positions[s.ID] = pos + 1
			}
		}

		for _, s := range roster {
			t := tallies[s.ID]
			pts, ok := positions[s.ID]
			if race.StatusOf(s.ID).IsAbsence() || !ok {
				pts = penalty
				t.absence = true
			}
			t.points = append(t.points, pts)
		}
	}

	for _, s := range roster {
		t := tallies[s.ID]
		if len(t.points) == 0 {
			continue
		}
		discarded := worstIndices(t.points, res.DiscardCount)
		res.Scores = append(res.Scores, Score{
			SkipperID:            s.ID,
			SkipperName:          s.Name,
			SailNumber:           s.SailNumber,
			TotalPoints:          total(t.points, discarded),
			PositionsPerRace:     t.points,
			DiscardedRaceIndices: discarded,
			HasAbsencePenalty:    t.absence,
		})
	}

	c.sort(res.Scores)
	return res
}

// worstIndices picks the n highest-scoring race indices, earlier races first
// on equal points, and returns them ascending.
func worstIndices(points []int, n int) []int {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]] > points[order[b]]
	})
	if n > len(order) {
		n = len(order)
	}
	out := make([]int, n)
	copy(out, order[:n])
	sort.Ints(out)
	return out
}

func total(points, discarded []int) int {
	drop := make(map[int]struct{}, len(discarded))
	for _, i := range discarded {
		drop[i] = struct{}{}
	}
	sum := 0
	for i, p := range points {
		if _, ok := drop[i]; ok {
			continue
		}
		sum += p
	}
	return sum
}

func (c *LowPointCalculator) sort(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints < b.TotalPoints
		}
		if c.tieBreak == TieBreakNone {
			return false
		}
		if cmp := compareSail(a.SailNumber, b.SailNumber); cmp != 0 {
			return cmp < 0
		}
		if a.SkipperName != b.SkipperName {
			return a.SkipperName < b.SkipperName
		}
		return a.SkipperID < b.SkipperID
	})
}

// compareSail compares numerically when both sail numbers are integers.
func compareSail(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
