package aggregator

import (
	"math"

	"github.com/pable/go-rl-metrics/internal/model"
)

type proximityResult struct {
	ticks map[int]int // entity id -> seconds credited as closest
	total int
}

// proximity credits, for every aligned second that has a ball sample, the
// playing identity nearest to the ball. Ties go to the lowest entity id.
func proximity(snaps []snapshot, rows map[int]*model.PlayerMatchStats) proximityResult {
	res := proximityResult{ticks: make(map[int]int)}
	for _, s := range snaps {
		ball, ok := s.Ball()
		if !ok {
			continue
		}
		best, bestDist := -1, math.Inf(1)
		for ref, p := range s.Samples {
			if ref.IsBall() {
				continue
			}
			id := int(ref)
			if _, playing := rows[id]; !playing {
				continue
			}
			d := p.Pos.Distance(ball.Pos)
			if d < bestDist || (d == bestDist && id < best) {
				best, bestDist = id, d
			}
		}
		if best < 0 {
			continue
		}
		res.ticks[best]++
		res.total++
	}
	return res
}
