package aggregator

import "github.com/pable/go-rl-metrics/internal/model"

// PlayerHistory rolls stored per-replay rows of one player into an aggregate.
// The most recent name wins; rows are expected newest first.
func PlayerHistory(rows []model.PlayerMatchResult) model.PlayerAggregate {
	var agg model.PlayerAggregate
	var boostSum, closestSum float64
	var boostN, closestN int
	for _, r := range rows {
		s := r.Stats
		if agg.Matches == 0 {
			agg.PlayerID = s.PlayerID
			agg.Name = s.Name
		}
		agg.Matches++
		if r.Won {
			agg.Wins++
		}
		if s.MVP {
			agg.MVPs++
		}
		agg.Score += s.Score
		agg.Goals += s.Goals
		agg.Assists += s.Assists
		agg.Saves += s.Saves
		agg.Shots += s.Shots
		agg.AttackingHalfTime += s.AttackingHalfTime
		agg.DefendingHalfTime += s.DefendingHalfTime
		agg.AirtimeLow += s.AirtimeLow
		if s.AvgBoost != nil {
			boostSum += float64(*s.AvgBoost)
			boostN++
		}
		if s.ClosestPercent != nil {
			closestSum += *s.ClosestPercent
			closestN++
		}
	}
	if boostN > 0 {
		v := round2(boostSum / float64(boostN))
		agg.AvgBoost = &v
	}
	if closestN > 0 {
		v := round2(closestSum / float64(closestN))
		agg.ClosestPercent = &v
	}
	agg.AttackingHalfTime = round2(agg.AttackingHalfTime)
	agg.DefendingHalfTime = round2(agg.DefendingHalfTime)
	agg.AirtimeLow = round2(agg.AirtimeLow)
	return agg
}
