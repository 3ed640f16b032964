package aggregator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// ErrKickoffAmbiguous is matched by every KickoffAmbiguousError.
var ErrKickoffAmbiguous = errors.New("kickoff ambiguous")

// KickoffAmbiguousError reports a ball exactly on the center line at a
// kickoff check. It invalidates the kickoff statistic only.
type KickoffAmbiguousError struct {
	Second int
	Cause  string
}

func (e *KickoffAmbiguousError) Error() string {
	return fmt.Sprintf("kickoff ambiguous: ball on the center line at second %d (%s kickoff)", e.Second, e.Cause)
}

func (e *KickoffAmbiguousError) Unwrap() error { return ErrKickoffAmbiguous }

// Kickoff causes.
const (
	CauseOpening  = "opening"
	CauseGoal     = "goal"
	CauseOvertime = "overtime"
)

// kickoffTally accumulates kickoff outcomes for one replay.
type kickoffTally struct {
	Results []model.KickoffResult
	Wins    map[model.Team]int
}

func (k *kickoffTally) Total() int { return len(k.Results) }

// kickoffWinner attributes a kickoff from the ball's lateral position a few
// seconds after it: a ball already in one team's half was pushed there by the
// other team.
func kickoffWinner(ball model.PositionSample) (model.Team, bool) {
	switch {
	case ball.Pos.Y > 0:
		return model.TeamBlue, true
	case ball.Pos.Y < 0:
		return model.TeamOrange, true
	default:
		return model.TeamUnknown, false
	}
}

// kickoffs evaluates the opening kickoff, the kickoff after every goal except
// an overtime winner, and the overtime kickoff. A check second without ball
// data is skipped with a warning.
func kickoffs(goals []model.Goal, snaps []snapshot, clk *clock.Aligner, cfg Config) (*kickoffTally, []model.Warning, error) {
	balls := ballBySecond(snaps)
	tally := &kickoffTally{Wins: map[model.Team]int{model.TeamBlue: 0, model.TeamOrange: 0}}
	var warnings []model.Warning

	check := func(second int, cause string, frame int, required bool) error {
		ball, ok := balls[second]
		if !ok {
			if required {
				warnings = append(warnings, model.Warning{
					Kind:    model.WarnKickoffSkipped,
					Frame:   frame,
					Message: fmt.Sprintf("no ball position at second %d for %s kickoff", second, cause),
				})
			}
			return nil
		}
		winner, ok := kickoffWinner(ball)
		if !ok {
			return &KickoffAmbiguousError{Second: second, Cause: cause}
		}
		tally.Wins[winner]++
		tally.Results = append(tally.Results, model.KickoffResult{Second: second, Cause: cause, Winner: winner})
		return nil
	}

	if err := check(cfg.OpeningKickoffSecond, CauseOpening, 0, false); err != nil {
		return nil, warnings, err
	}

	ordered := append([]model.Goal(nil), goals...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Frame < ordered[j].Frame })
	if clk.Overtime() && len(ordered) > 0 {
		ordered = ordered[:len(ordered)-1]
	}
	for _, g := range ordered {
		sec, ok := clk.Aligned(g.Frame)
		if !ok || sec <= 0 {
			continue
		}
		at := sec - cfg.KickoffDelay
		if at <= 0 {
			// Regulation ends before the restart; in overtime the next
			// kickoff is the overtime one.
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnKickoffSkipped,
				Frame:   g.Frame,
				Message: fmt.Sprintf("goal at second %d leaves no kickoff before regulation ends", sec),
			})
			continue
		}
		if err := check(at, CauseGoal, g.Frame, true); err != nil {
			return nil, warnings, err
		}
	}

	if clk.Overtime() {
		if err := check(cfg.OvertimeKickoffSecond, CauseOvertime, 0, false); err != nil {
			return nil, warnings, err
		}
	}
	return tally, warnings, nil
}
