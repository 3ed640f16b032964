// Package clock aligns frame indices with the match clock.
package clock

import (
	"sort"

	"github.com/pable/go-rl-metrics/internal/model"
)

// Aligner maps frames to aligned clock seconds. In overtime, seconds after
// regulation reaches 0 are stored negated, so values decrease monotonically
// over the whole match and -1 means one second into overtime.
type Aligner struct {
	frames   []int       // ascending frames that carry a clock sample
	seconds  map[int]int // frame -> aligned seconds
	overtime bool
}

// New builds the mapping. When several samples share a frame the last wins.
func New(samples []model.ClockSample) *Aligner {
	a := &Aligner{seconds: make(map[int]int, len(samples))}
	for _, s := range samples {
		if _, seen := a.seconds[s.Frame]; !seen {
			a.frames = append(a.frames, s.Frame)
		}
		a.seconds[s.Frame] = s.SecondsRemaining
	}
	sort.Ints(a.frames)

	// Regulation shows one second remaining once; overtime shows it again.
	ones := 0
	for _, f := range a.frames {
		if a.seconds[f] == 1 {
			ones++
		}
	}
	a.overtime = ones > 1

	if a.overtime {
		hitZero := false
		for _, f := range a.frames {
			v := a.seconds[f]
			if hitZero && v > 0 {
				a.seconds[f] = -v
			}
			if v == 0 {
				hitZero = true
			}
		}
	}
	return a
}

// Overtime reports whether the match went to overtime.
func (a *Aligner) Overtime() bool { return a.overtime }

// Len returns the number of frames carrying a clock sample.
func (a *Aligner) Len() int { return len(a.frames) }

// Frames returns the clock-sampled frames in ascending order.
func (a *Aligner) Frames() []int { return a.frames }

// SecondsAt returns the aligned seconds recorded exactly at frame.
func (a *Aligner) SecondsAt(frame int) (int, bool) {
	s, ok := a.seconds[frame]
	return s, ok
}

// NearestFrame returns the clock-sampled frame closest to target. Ties go to
// the lower frame. ok is false when there are no clock samples.
func (a *Aligner) NearestFrame(target int) (frame int, ok bool) {
	n := len(a.frames)
	if n == 0 {
		return 0, false
	}
	i := sort.SearchInts(a.frames, target)
	switch {
	case i == 0:
		return a.frames[0], true
	case i == n:
		return a.frames[n-1], true
	}
	lo, hi := a.frames[i-1], a.frames[i]
	if hi == target || hi-target < target-lo {
		return hi, true
	}
	return lo, true
}

// Aligned returns the seconds of the clock-sampled frame nearest to frame.
func (a *Aligner) Aligned(frame int) (int, bool) {
	f, ok := a.NearestFrame(frame)
	if !ok {
		return 0, false
	}
	return a.seconds[f], true
}

// NextTick returns the first clock-sampled frame after frame whose seconds
// fall strictly below the seconds aligned to frame.
func (a *Aligner) NextTick(frame int) (int, bool) {
	cur, ok := a.Aligned(frame)
	if !ok {
		return 0, false
	}
	i := sort.SearchInts(a.frames, frame+1)
	for ; i < len(a.frames); i++ {
		f := a.frames[i]
		if a.seconds[f] < cur {
			return f, true
		}
	}
	return 0, false
}

// MatchTime is the number of clock ticks observed after the first.
func (a *Aligner) MatchTime() int {
	if len(a.frames) == 0 {
		return 0
	}
	return len(a.frames) - 1
}
