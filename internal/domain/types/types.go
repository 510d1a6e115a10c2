// Package types contains the scoreboard views shared by the API, the live
// feed and the CLI.
package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/scoring"
)

// Legend lines.
const (
	LegendPenalties   = "* Includes DNS/DNF penalties"
	LegendUncompleted = "Italicized races have no finishing positions"
)

// Scoreboard is a rendered standings table for one regatta.
type Scoreboard struct {
	RegattaID        string    `json:"regatta_id" yaml:"regatta_id"`
	Name             string    `json:"name" yaml:"name"`
	Location         string    `json:"location" yaml:"location"`
	Date             time.Time `json:"date" yaml:"date"`
	RaceCount        int       `json:"race_count" yaml:"race_count"`
	DiscardCount     int       `json:"discard_count" yaml:"discard_count"`
	UncompletedRaces []int     `json:"uncompleted_races" yaml:"uncompleted_races"`
	Rows             []Row     `json:"rows" yaml:"rows"`
	Legend           []string  `json:"legend,omitempty" yaml:"legend,omitempty"`
}

// Row is one skipper's line in the table.
type Row struct {
	Rank       int    `json:"rank" yaml:"rank"`
	SkipperID  string `json:"skipper_id" yaml:"skipper_id"`
	Skipper    string `json:"skipper" yaml:"skipper"`
	SailNumber string `json:"sail_number" yaml:"sail_number"`
	Total      int    `json:"total" yaml:"total"`
	TotalLabel string `json:"total_label" yaml:"total_label"`
	Penalized  bool   `json:"penalized" yaml:"penalized"`
	Races      []Cell `json:"races" yaml:"races"`
}

// Cell is one race result for one skipper.
type Cell struct {
	Race        int          `json:"race" yaml:"race"`
	Points      int          `json:"points" yaml:"points"`
	Status      model.Status `json:"status" yaml:"status"`
	Label       string       `json:"label" yaml:"label"`
	Discarded   bool         `json:"discarded,omitempty" yaml:"discarded,omitempty"`
	Uncompleted bool         `json:"uncompleted,omitempty" yaml:"uncompleted,omitempty"`
}

// Summary is the listing form of a regatta.
type Summary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Date           time.Time `json:"date"`
	RaceCount      int       `json:"race_count"`
	CompletedRaces int       `json:"completed_races"`
}

// RaceView is the API form of a race.
type RaceView struct {
	ID        string                  `json:"id"`
	RegattaID string                  `json:"regatta_id"`
	Number    int                     `json:"number"`
	CreatedAt time.Time               `json:"created_at"`
	Finishing []string                `json:"finishing_order"`
	Statuses  map[string]model.Status `json:"statuses"`
	Completed bool                    `json:"completed"`
}

// NewRaceView numbers a race within its regatta.
func NewRaceView(r *model.Race, number int) RaceView {
	return RaceView{
		ID:        r.ID,
		RegattaID: r.RegattaID,
		Number:    number,
		CreatedAt: r.CreatedAt,
		Finishing: r.FinishingOrder(),
		Statuses:  r.Statuses(),
		Completed: r.IsCompleted(),
	}
}

// Summarize builds the listing form of a regatta.
func Summarize(g *model.Regatta) Summary {
	s := Summary{
		ID:        g.ID,
		Name:      g.Name,
		Location:  g.Location,
		Date:      g.Date,
		RaceCount: len(g.Races),
	}
	for _, r := range g.Races {
		if r.IsCompleted() {
			s.CompletedRaces++
		}
	}
	return s
}

// BuildScoreboard renders res, which must have been computed from races (in
// creation order) and roster.
func BuildScoreboard(g *model.Regatta, races []*model.Race, roster model.Roster, res scoring.Result) Scoreboard {
	sb := Scoreboard{
		RaceCount:        len(races),
		DiscardCount:     res.DiscardCount,
		UncompletedRaces: append([]int{}, res.UncompletedRaces...),
		Rows:             make([]Row, 0, len(res.Scores)),
	}
	if g != nil {
		sb.RegattaID = g.ID
		sb.Name = g.Name
		sb.Location = g.Location
		sb.Date = g.Date
	}

	uncompleted := make(map[int]bool, len(res.UncompletedRaces))
	for _, i := range res.UncompletedRaces {
		uncompleted[i] = true
	}

	penalized := false
	for i, s := range res.Scores {
		row := Row{
			Rank:       i + 1,
			SkipperID:  s.SkipperID,
			Skipper:    s.SkipperName,
			SailNumber: s.SailNumber,
			Total:      s.TotalPoints,
			TotalLabel: strconv.Itoa(s.TotalPoints),
			Penalized:  s.HasAbsencePenalty,
			Races:      make([]Cell, len(s.PositionsPerRace)),
		}
		// Equal totals share the rank of the first row holding that total.
		if i > 0 && res.Scores[i-1].TotalPoints == s.TotalPoints {
			row.Rank = sb.Rows[i-1].Rank
		}
		if s.HasAbsencePenalty {
			row.TotalLabel += "*"
			penalized = true
		}
		for ri, pts := range s.PositionsPerRace {
			status := model.StatusFinished
			if ri < len(races) && races[ri] != nil {
				status = races[ri].StatusOf(s.SkipperID)
			}
			row.Races[ri] = Cell{
				Race:        ri + 1,
				Points:      pts,
				Status:      status,
				Label:       CellLabel(status, pts),
				Discarded:   s.IsDiscarded(ri),
				Uncompleted: uncompleted[ri],
			}
		}
		sb.Rows = append(sb.Rows, row)
	}

	if penalized {
		sb.Legend = append(sb.Legend, LegendPenalties)
	}
	if len(res.UncompletedRaces) > 0 {
		sb.Legend = append(sb.Legend, LegendUncompleted)
	}
	if len(races) >= 5 {
		sb.Legend = append(sb.Legend, DiscardLegend(res.DiscardCount))
	}
	return sb
}

// Compute scores g's races in creation order and renders the scoreboard
// along with the raw result.
func Compute(calc scoring.Calculator, g *model.Regatta, roster model.Roster) (Scoreboard, scoring.Result) {
	var races []*model.Race
	if g != nil {
		races = g.OrderedRaces()
	}
	res := calc.ComputeScores(races, roster)
	return BuildScoreboard(g, races, roster, res), res
}

// CellLabel is "4" for a finisher and "DNS (10)" for an explicit absence.
func CellLabel(status model.Status, points int) string {
	if status.IsAbsence() {
		return fmt.Sprintf("%s (%d)", status.Label(), points)
	}
	return strconv.Itoa(points)
}

// DiscardLegend reads "1 race discarded" or "2 races discarded".
func DiscardLegend(n int) string {
	if n == 1 {
		return "1 race discarded"
	}
	return fmt.Sprintf("%d races discarded", n)
}
