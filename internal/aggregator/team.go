package aggregator

import (
	"math"

	"github.com/pable/go-rl-metrics/internal/model"
)

// teamStats sums the player rows of one team. Averages are taken over the
// players actually on the team.
func teamStats(replayHash string, team model.Team, rows []model.PlayerMatchStats, closestTotal int) *model.TeamStats {
	ts := &model.TeamStats{ReplayHash: replayHash, Team: team}
	var boostSum, boostN int
	for _, r := range rows {
		if r.Team != team {
			continue
		}
		ts.Players++
		ts.Score += r.Score
		ts.Goals += r.Goals
		ts.Assists += r.Assists
		ts.Saves += r.Saves
		ts.Shots += r.Shots
		ts.PointsScore += r.PointsScore
		ts.PlayScore += r.PlayScore
		ts.FramesClosest += r.FramesClosest
		ts.AttackingHalfTime += r.AttackingHalfTime
		ts.DefendingHalfTime += r.DefendingHalfTime
		ts.OrangeZoneTime += r.OrangeZoneTime
		ts.BlueZoneTime += r.BlueZoneTime
		ts.MidfieldTime += r.MidfieldTime
		ts.AirTime += r.AirtimeLow
		ts.AirtimeMedium += r.AirtimeMedium
		ts.AirtimeHigh += r.AirtimeHigh
		if r.AvgBoost != nil {
			boostSum += *r.AvgBoost
			boostN++
		}
	}

	ts.AttackingHalfTime = round2(ts.AttackingHalfTime)
	ts.DefendingHalfTime = round2(ts.DefendingHalfTime)
	ts.OrangeZoneTime = round2(ts.OrangeZoneTime)
	ts.BlueZoneTime = round2(ts.BlueZoneTime)
	ts.MidfieldTime = round2(ts.MidfieldTime)
	ts.AirTime = round2(ts.AirTime)
	ts.AirtimeMedium = round2(ts.AirtimeMedium)
	ts.AirtimeHigh = round2(ts.AirtimeHigh)
	if ts.Players > 0 {
		ts.AvgScore = int(math.Round(float64(ts.Score) / float64(ts.Players)))
	}
	if boostN > 0 {
		avg := int(math.Round(float64(boostSum) / float64(boostN)))
		ts.AvgBoost = &avg
	}
	if closestTotal > 0 {
		pct := round2(float64(ts.FramesClosest) / float64(closestTotal) * 100)
		ts.ClosestPercent = &pct
	}
	return ts
}
