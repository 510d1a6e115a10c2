package types_test

import (
	"testing"
	"time"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/scoring"
	types "github.com/okian/regatta/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture(raceCount int) (*model.Regatta, model.Roster) {
	g, _ := model.NewRegatta("Test Regatta", "Filby", time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC))
	roster := model.Roster{
		{ID: "a", Name: "Alice Davis", SailNumber: "102"},
		{ID: "b", Name: "John Smith", SailNumber: "47"},
		{ID: "c", Name: "Eve Lewis", SailNumber: "106"},
	}
	base := time.Date(2025, 4, 19, 10, 0, 0, 0, time.UTC)
	for i := 0; i < raceCount; i++ {
		g.AddRace(model.NewRace(base.Add(time.Duration(i)*time.Minute), roster...))
	}
	return g, roster
}

func build(g *model.Regatta, roster model.Roster) types.Scoreboard {
	sb, _ := types.Compute(scoring.NewCalculator(), g, roster)
	return sb
}

func TestBuildScoreboard(t *testing.T) {
	Convey("Given a clean two race regatta", t, func() {
		g, roster := fixture(2)
		sb := build(g, roster)

		Convey("Then header fields come from the regatta", func() {
			So(sb.RegattaID, ShouldEqual, g.ID)
			So(sb.Name, ShouldEqual, "Test Regatta")
			So(sb.Location, ShouldEqual, "Filby")
			So(sb.RaceCount, ShouldEqual, 2)
			So(sb.DiscardCount, ShouldEqual, 0)
		})

		Convey("Then rows are ranked without a legend", func() {
			So(sb.Rows, ShouldHaveLength, 3)
			So(sb.Rows[0].SkipperID, ShouldEqual, "a")
			So(sb.Rows[0].Rank, ShouldEqual, 1)
			So(sb.Rows[0].TotalLabel, ShouldEqual, "2")
			So(sb.Rows[0].Races[1].Label, ShouldEqual, "1")
			So(sb.Rows[0].Races[1].Race, ShouldEqual, 2)
			So(sb.Legend, ShouldBeEmpty)
		})
	})

	Convey("Given a regatta with penalties, an empty race and five races", t, func() {
		g, roster := fixture(4)
		races := g.OrderedRaces()
		races[0].SetStatus("b", model.StatusDNS)
		g.AddRace(model.NewRace(races[3].CreatedAt.Add(time.Minute)))
		sb := build(g, roster)

		Convey("Then penalized totals carry a star and cells show the status", func() {
			var john types.Row
			for _, r := range sb.Rows {
				if r.SkipperID == "b" {
					john = r
				}
			}
			So(john.Penalized, ShouldBeTrue)
			So(john.TotalLabel, ShouldEndWith, "*")
			So(john.Races[0].Status, ShouldEqual, model.StatusDNS)
			So(john.Races[0].Label, ShouldEqual, "DNS (4)")
		})

		Convey("Then the uncompleted race is flagged on every row", func() {
			So(sb.UncompletedRaces, ShouldResemble, []int{4})
			for _, r := range sb.Rows {
				So(r.Races[4].Uncompleted, ShouldBeTrue)
				So(r.Races[4].Label, ShouldEqual, "4")
			}
		})

		Convey("Then one discard is marked and all legend lines appear", func() {
			So(sb.DiscardCount, ShouldEqual, 1)
			So(sb.Rows[0].Races[4].Discarded, ShouldBeTrue)
			So(sb.Legend, ShouldResemble, []string{
				types.LegendPenalties,
				types.LegendUncompleted,
				"1 race discarded",
			})
		})
	})

	Convey("Given scores with tied totals", t, func() {
		res := scoring.Result{Scores: []scoring.Score{
			{SkipperID: "a", TotalPoints: 3, PositionsPerRace: []int{3}},
			{SkipperID: "b", TotalPoints: 4, PositionsPerRace: []int{4}},
			{SkipperID: "c", TotalPoints: 4, PositionsPerRace: []int{4}},
			{SkipperID: "d", TotalPoints: 6, PositionsPerRace: []int{6}},
		}}
		sb := types.BuildScoreboard(nil, nil, nil, res)

		Convey("Then ranks use competition ranking", func() {
			ranks := make([]int, len(sb.Rows))
			for i, r := range sb.Rows {
				ranks[i] = r.Rank
			}
			So(ranks, ShouldResemble, []int{1, 2, 2, 4})
			So(sb.Rows[0].Races[0].Status, ShouldEqual, model.StatusFinished)
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Given cell and legend labels", t, func() {
		So(types.CellLabel(model.StatusFinished, 3), ShouldEqual, "3")
		So(types.CellLabel(model.StatusDNF, 10), ShouldEqual, "DNF (10)")
		So(types.DiscardLegend(1), ShouldEqual, "1 race discarded")
		So(types.DiscardLegend(2), ShouldEqual, "2 races discarded")
	})
}

func TestViews(t *testing.T) {
	Convey("Given a regatta with one completed and one empty race", t, func() {
		g, _ := fixture(1)
		empty := model.NewRace(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC))
		g.AddRace(empty)

		Convey("Then the summary counts completed races", func() {
			s := types.Summarize(g)
			So(s.RaceCount, ShouldEqual, 2)
			So(s.CompletedRaces, ShouldEqual, 1)
		})

		Convey("Then the race view carries its number", func() {
			v := types.NewRaceView(empty, g.RaceNumber(empty.ID))
			So(v.Number, ShouldEqual, 2)
			So(v.Completed, ShouldBeFalse)
			So(v.RegattaID, ShouldEqual, g.ID)
		})
	})
}
