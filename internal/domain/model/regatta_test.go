package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/regatta/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegatta_OrderedRaces(t *testing.T) {
	Convey("Given a regatta whose races were appended out of creation order", t, func() {
		g, err := model.NewRegatta("Spring Series", "Filby", time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC))
		So(err, ShouldBeNil)

		base := time.Date(2025, 4, 19, 10, 0, 0, 0, time.UTC)
		third := model.NewRace(base.Add(2 * time.Hour))
		first := model.NewRace(base)
		second := model.NewRace(base.Add(time.Hour))
		g.AddRace(third)
		g.AddRace(first)
		g.AddRace(second)

		Convey("Then races are ordered by creation time, not insertion", func() {
			ordered := g.OrderedRaces()
			So(ordered, ShouldHaveLength, 3)
			So(ordered[0].ID, ShouldEqual, first.ID)
			So(ordered[1].ID, ShouldEqual, second.ID)
			So(ordered[2].ID, ShouldEqual, third.ID)
		})

		Convey("And race numbers follow creation order", func() {
			So(g.RaceNumber(first.ID), ShouldEqual, 1)
			So(g.RaceNumber(third.ID), ShouldEqual, 3)
			So(g.RaceNumber("missing"), ShouldEqual, 0)
		})

		Convey("And AddRace links the race to the regatta", func() {
			So(first.RegattaID, ShouldEqual, g.ID)
		})

		Convey("When a race is removed", func() {
			So(g.RemoveRace(second.ID), ShouldBeTrue)
			So(g.RemoveRace(second.ID), ShouldBeFalse)

			Convey("Then numbering closes the gap", func() {
				So(g.RaceNumber(third.ID), ShouldEqual, 2)
			})
		})

		Convey("When cloned", func() {
			c := g.Clone()
			c.Races[0].SetFinishingOrder([]string{"x"})

			Convey("Then the original races are untouched", func() {
				r, ok := g.Race(c.Races[0].ID)
				So(ok, ShouldBeTrue)
				So(r.IsCompleted(), ShouldBeFalse)
			})
		})
	})

	Convey("Given races sharing a timestamp", t, func() {
		at := time.Now()
		a := model.NewRace(at)
		b := model.NewRace(at)
		a.ID, b.ID = "b-race", "a-race"

		Convey("Then the race ID breaks the tie deterministically", func() {
			ordered := model.OrderRaces([]*model.Race{a, b})
			So(ordered[0].ID, ShouldEqual, "a-race")
			So(ordered[1].ID, ShouldEqual, "b-race")
		})
	})
}

func TestConstructors(t *testing.T) {
	Convey("Given constructor input", t, func() {
		Convey("When the regatta name is blank", func() {
			_, err := model.NewRegatta("  ", "Filby", time.Now())
			So(errors.Is(err, model.ErrEmptyName), ShouldBeTrue)
		})

		Convey("When a skipper is created", func() {
			s, err := model.NewSkipper(" Neil Johnson ", " 01 ")
			So(err, ShouldBeNil)
			So(s.ID, ShouldNotBeEmpty)
			So(s.Name, ShouldEqual, "Neil Johnson")
			So(s.SailNumber, ShouldEqual, "01")
		})

		Convey("When the skipper name is blank", func() {
			_, err := model.NewSkipper("", "7")
			So(errors.Is(err, model.ErrEmptyName), ShouldBeTrue)
		})
	})
}

func TestRoster(t *testing.T) {
	Convey("Given a roster", t, func() {
		roster := model.Roster{
			{ID: "3", Name: "Eve", SailNumber: "106"},
			{ID: "1", Name: "Alice", SailNumber: "102"},
			{ID: "2", Name: "Alice", SailNumber: "101"},
		}

		Convey("Then it indexes by ID", func() {
			idx := roster.Index()
			So(idx, ShouldHaveLength, 3)
			So(idx["3"].Name, ShouldEqual, "Eve")
			So(roster.Len(), ShouldEqual, 3)
		})

		Convey("Then SortedByName orders by name then sail without touching the source", func() {
			sorted := roster.SortedByName()
			So(sorted[0].ID, ShouldEqual, "2")
			So(sorted[1].ID, ShouldEqual, "1")
			So(sorted[2].ID, ShouldEqual, "3")
			So(roster[0].ID, ShouldEqual, "3")
		})
	})
}
