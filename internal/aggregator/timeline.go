package aggregator

import (
	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// snapshot is the last known position of every ref within one aligned second.
type snapshot struct {
	Second  int
	Samples map[model.Ref]model.PositionSample
}

// Ball returns the ball sample of the second, if any.
func (s snapshot) Ball() (model.PositionSample, bool) {
	b, ok := s.Samples[model.BallRef]
	return b, ok
}

// snapshots groups position samples by aligned second in match order. Within
// a second the latest sample of each ref wins.
func snapshots(positions []model.PositionSample, clk *clock.Aligner) []snapshot {
	var out []snapshot
	index := make(map[int]int)
	for _, p := range positions {
		sec, ok := clk.Aligned(p.Frame)
		if !ok {
			return nil
		}
		i, seen := index[sec]
		if !seen {
			i = len(out)
			index[sec] = i
			out = append(out, snapshot{Second: sec, Samples: make(map[model.Ref]model.PositionSample)})
		}
		out[i].Samples[p.Ref] = p
	}
	return out
}

// ballBySecond indexes the ball sample of every snapshot that has one.
func ballBySecond(snaps []snapshot) map[int]model.PositionSample {
	out := make(map[int]model.PositionSample, len(snaps))
	for _, s := range snaps {
		if b, ok := s.Ball(); ok {
			out[s.Second] = b
		}
	}
	return out
}
