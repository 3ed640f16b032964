package aggregator

import "github.com/pable/go-rl-metrics/internal/model"

// zoneCounts tallies position samples per bucket.
type zoneCounts struct {
	samples              int
	orangeSide, blueSide int
	orangeZone, blueZone int
	midfield             int
	low, medium, high    int
}

// occupancy buckets one entity's samples and converts counts to estimated
// seconds: matchSeconds / samples * count.
func occupancy(samples []model.PositionSample, matchSeconds int, cfg Config) model.ZoneTimes {
	var c zoneCounts
	for _, s := range samples {
		c.samples++
		y, z := s.Pos.Y, s.Pos.Z

		switch {
		case y > 0:
			c.orangeSide++
		case y < 0:
			c.blueSide++
		}

		switch {
		case y > cfg.ZoneThreshold:
			c.orangeZone++
		case y < -cfg.ZoneThreshold:
			c.blueZone++
		default:
			c.midfield++
		}

		// Cumulative: a high sample also counts as medium and low.
		if z >= cfg.HeightBounds[0] {
			c.low++
		}
		if z >= cfg.HeightBounds[1] {
			c.medium++
		}
		if z >= cfg.HeightBounds[2] {
			c.high++
		}
	}
	if c.samples == 0 {
		return model.ZoneTimes{}
	}

	scale := float64(matchSeconds) / float64(c.samples)
	est := func(n int) float64 { return round2(scale * float64(n)) }
	return model.ZoneTimes{
		OrangeSide:    est(c.orangeSide),
		BlueSide:      est(c.blueSide),
		OrangeZone:    est(c.orangeZone),
		BlueZone:      est(c.blueZone),
		Midfield:      est(c.midfield),
		AirtimeLow:    est(c.low),
		AirtimeMedium: est(c.medium),
		AirtimeHigh:   est(c.high),
	}
}
