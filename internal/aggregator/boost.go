package aggregator

import (
	"math"

	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// averageBoost maps samples to aligned seconds (the last reading of a second
// wins), averages the raw 0-255 levels, and returns a rounded 0-100 percentage.
// Nil means the player had no attributed readings.
func averageBoost(samples []model.ResourceSample, clk *clock.Aligner) *int {
	if len(samples) == 0 {
		return nil
	}
	bySecond := make(map[int]int)
	var order []int
	for _, s := range samples {
		sec, ok := clk.Aligned(s.Frame)
		if !ok {
			return nil
		}
		if _, seen := bySecond[sec]; !seen {
			order = append(order, sec)
		}
		bySecond[sec] = s.Level
	}

	var sum float64
	for _, sec := range order {
		sum += float64(bySecond[sec])
	}
	avg := sum / float64(len(order))
	pct := int(math.Round(avg / 255 * 100))
	return &pct
}
