package aggregator

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-rl-metrics/internal/model"
)

func TestPlayerHistory(t *testing.T) {
	Convey("Given three stored matches of one player", t, func() {
		b1, b2 := 40, 60
		c1 := 30.0
		rows := []model.PlayerMatchResult{
			{Won: true, Stats: model.PlayerMatchStats{PlayerID: "p1", Name: "alice-new", Score: 500, Goals: 3, Shots: 6, MVP: true, AvgBoost: &b1, ClosestPercent: &c1, AttackingHalfTime: 100, DefendingHalfTime: 200}},
			{Won: false, Stats: model.PlayerMatchStats{PlayerID: "p1", Name: "alice", Score: 200, Goals: 0, Shots: 2, AvgBoost: &b2}},
			{Won: true, Stats: model.PlayerMatchStats{PlayerID: "p1", Name: "alice", Score: 200, Saves: 4}},
		}

		agg := PlayerHistory(rows)

		Convey("Then totals add up and the newest name is kept", func() {
			So(agg.Name, ShouldEqual, "alice-new")
			So(agg.Matches, ShouldEqual, 3)
			So(agg.Wins, ShouldEqual, 2)
			So(agg.MVPs, ShouldEqual, 1)
			So(agg.Goals, ShouldEqual, 3)
			So(agg.Saves, ShouldEqual, 4)
			So(agg.AvgScore(), ShouldEqual, 300.0)
			So(agg.ShootingPct(), ShouldAlmostEqual, 37.5)
		})

		Convey("Then averages only use matches where they were available", func() {
			So(*agg.AvgBoost, ShouldEqual, 50.0)
			So(*agg.ClosestPercent, ShouldEqual, 30.0)
		})

		Convey("Then the attacking share comes from half times", func() {
			So(agg.AttackingShare(), ShouldAlmostEqual, 100.0/3, 0.001)
		})
	})

	Convey("Given no rows", t, func() {
		agg := PlayerHistory(nil)
		So(agg.Matches, ShouldEqual, 0)
		So(agg.AvgBoost, ShouldBeNil)
		So(agg.WinPct(), ShouldEqual, 0.0)
	})
}
