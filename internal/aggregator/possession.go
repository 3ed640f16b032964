package aggregator

import (
	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// window is an open frame interval (From, To) excluded from possession.
type window struct {
	From, To int
}

func (w window) contains(frame int) bool { return frame > w.From && frame < w.To }

// deadBallWindows spans each goal frame to the first later clock tick that
// falls below the goal's aligned second. Without such a tick the window runs
// to the end of the replay.
func deadBallWindows(goals []model.Goal, end int, clk *clock.Aligner) []window {
	out := make([]window, 0, len(goals))
	for _, g := range goals {
		to, ok := clk.NextTick(g.Frame)
		if !ok {
			to = end + 1
		}
		out = append(out, window{From: g.Frame, To: to})
	}
	return out
}

// possessionShare counts, frame by frame from the first possession sample,
// which team last touched the ball, skipping dead-ball windows. It returns
// each team's percentage, or nil when nothing could be counted.
func possessionShare(samples []model.PossessionSample, goals []model.Goal, numFrames int, clk *clock.Aligner) map[model.Team]float64 {
	if len(samples) == 0 {
		return nil
	}
	last := numFrames - 1
	if f := samples[len(samples)-1].Frame; f > last {
		last = f
	}
	windows := deadBallWindows(goals, last, clk)

	counts := make(map[model.Team]int, 2)
	var current model.Team
	next := 0
	for f := samples[0].Frame; f <= last; f++ {
		for next < len(samples) && samples[next].Frame <= f {
			current = samples[next].Team
			next++
		}
		dead := false
		for _, w := range windows {
			if w.contains(f) {
				dead = true
				break
			}
		}
		if !dead {
			counts[current]++
		}
	}

	total := counts[model.TeamBlue] + counts[model.TeamOrange]
	if total == 0 {
		return nil
	}
	out := make(map[model.Team]float64, 2)
	for _, team := range model.Teams {
		out[team] = round2(float64(counts[team]) / float64(total) * 100)
	}
	return out
}
