package aggregator

import (
	"sort"

	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// goalStats enriches each goal with its aligned second, the scorer's id and
// the ball position at the goal frame, falling back to the latest earlier
// ball sample.
func goalStats(goals []model.Goal, ball []model.PositionSample, clk *clock.Aligner, idByName map[string]string) []model.GoalStats {
	out := make([]model.GoalStats, 0, len(goals))
	for i, g := range goals {
		gs := model.GoalStats{
			Index:      i,
			Frame:      g.Frame,
			ScorerName: g.ScorerName,
			ScorerID:   idByName[g.ScorerName],
			ScorerTeam: g.ScorerTeam,
		}
		if sec, ok := clk.Aligned(g.Frame); ok {
			gs.Second = &sec
		}
		// First sample after the goal frame; the one before it is the latest at or before.
		j := sort.Search(len(ball), func(k int) bool { return ball[k].Frame > g.Frame })
		if j > 0 {
			pos := ball[j-1].Pos
			gs.BallPosition = &pos
		}
		out = append(out, gs)
	}
	return out
}

// gameWinningGoal replays goals in order and remembers the scorer of every goal
// scored while the score was level. The last one remembered scored the goal
// that created the lead the other team never equalled.
func gameWinningGoal(goals []model.Goal) (string, bool) {
	ordered := append([]model.Goal(nil), goals...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Frame < ordered[j].Frame })

	tally := make(map[model.Team]int, 2)
	level := true
	var scorer string
	found := false
	for _, g := range ordered {
		if level {
			scorer = g.ScorerName
			found = true
		}
		tally[g.ScorerTeam]++
		level = tally[model.TeamBlue] == tally[model.TeamOrange]
	}
	if !found || level {
		return "", false
	}
	return scorer, true
}

// selectMVP returns the index of the row with the highest score. When several
// rows share the maximum, it returns -1 and their names.
func selectMVP(rows []model.PlayerMatchStats) (int, []string) {
	best := -1
	for i, r := range rows {
		if best < 0 || r.Score > rows[best].Score {
			best = i
		}
	}
	if best < 0 {
		return -1, nil
	}
	var tied []string
	for _, r := range rows {
		if r.Score == rows[best].Score {
			tied = append(tied, r.Name)
		}
	}
	if len(tied) > 1 {
		return -1, tied
	}
	return best, nil
}
