package clock

import (
	"testing"

	"github.com/pable/go-rl-metrics/internal/model"
)

func samples(pairs ...int) []model.ClockSample {
	var out []model.ClockSample
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.ClockSample{Frame: pairs[i], SecondsRemaining: pairs[i+1]})
	}
	return out
}

func TestExactFrameRoundTrip(t *testing.T) {
	a := New(samples(0, 300, 30, 299, 60, 298, 95, 297))
	for _, f := range a.Frames() {
		want, _ := a.SecondsAt(f)
		nf, ok := a.NearestFrame(f)
		if !ok || nf != f {
			t.Errorf("NearestFrame(%d) = %d, want itself", f, nf)
		}
		got, _ := a.Aligned(f)
		if got != want {
			t.Errorf("Aligned(%d) = %d, want %d", f, got, want)
		}
	}
}

func TestNearestFrameTieBreak(t *testing.T) {
	a := New(samples(10, 5, 20, 4, 40, 3))
	tests := []struct {
		target, want int
	}{
		{-5, 10},
		{14, 10},
		{15, 10}, // equidistant: lower frame wins
		{16, 20},
		{30, 20}, // equidistant
		{31, 40},
		{1000, 40},
	}
	for _, tt := range tests {
		got, ok := a.NearestFrame(tt.target)
		if !ok || got != tt.want {
			t.Errorf("NearestFrame(%d) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestLastSampleInFrameWins(t *testing.T) {
	a := New(samples(5, 100, 5, 99))
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
	if s, _ := a.SecondsAt(5); s != 99 {
		t.Errorf("SecondsAt(5) = %d, want 99", s)
	}
}

func TestOvertimeDetection(t *testing.T) {
	regulation := New(samples(0, 3, 10, 2, 20, 1, 30, 0))
	if regulation.Overtime() {
		t.Error("single occurrence of 1 flagged as overtime")
	}
	if s, _ := regulation.SecondsAt(30); s != 0 {
		t.Errorf("SecondsAt(30) = %d", s)
	}

	ot := New(samples(0, 3, 10, 2, 20, 1, 30, 0, 40, 1, 50, 2, 60, 3))
	if !ot.Overtime() {
		t.Fatal("second occurrence of 1 not flagged as overtime")
	}
	for _, f := range []int{40, 50, 60} {
		s, _ := ot.SecondsAt(f)
		if s > 0 {
			t.Errorf("overtime frame %d stored as %d, want non-positive", f, s)
		}
	}
	if s, _ := ot.SecondsAt(40); s != -1 {
		t.Errorf("first overtime second = %d, want -1", s)
	}
	if s, _ := ot.SecondsAt(20); s != 1 {
		t.Errorf("regulation second = %d, want 1", s)
	}
}

func TestNextTick(t *testing.T) {
	// Clock paused at 250 between frames 100 and 300 (goal replay).
	a := New(samples(90, 251, 100, 250, 300, 250, 330, 249))
	f, ok := a.NextTick(120)
	if !ok || f != 330 {
		t.Errorf("NextTick(120) = %d, %v; want 330", f, ok)
	}
	if _, ok := a.NextTick(330); ok {
		t.Error("NextTick past the last tick should report false")
	}
	if a.MatchTime() != 3 {
		t.Errorf("MatchTime = %d, want 3", a.MatchTime())
	}
}

func TestEmptyAligner(t *testing.T) {
	a := New(nil)
	if _, ok := a.NearestFrame(10); ok {
		t.Error("NearestFrame on empty aligner reported ok")
	}
	if a.MatchTime() != 0 || a.Overtime() {
		t.Error("empty aligner should report zero match time, no overtime")
	}
}
