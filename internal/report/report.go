package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-rl-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchSummary prints a one-line summary header for the replay.
func PrintMatchSummary(w io.Writer, s model.ReplaySummary) {
	hash := s.ReplayHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	ot := ""
	if s.Overtime {
		ot = " (OT)"
	}
	fmt.Fprintf(w, "\nMap: %s  |  Date: %s  |  Type: %s  |  Score: Blue %d - Orange %d%s  |  Hash: %s\n\n",
		orDash(s.MapName), orDash(s.MatchDate), orDash(s.MatchType), s.BlueScore, s.OrangeScore, ot, hash)
}

// PrintPlayerTable prints one row per playing player.
// If focusID is non-empty, that player's row is marked with ">".
func PrintPlayerTable(w io.Writer, stats []model.PlayerMatchStats, focusID string) {
	table := newTable(w)
	table.Header(
		" ", "NAME", "TEAM", "SCORE", "G", "A", "SV", "SH", "PTS", "PLAY",
		"BOOST", "CLOSEST%", "ATT_HALF", "DEF_HALF", "MID", "AIR_LO", "AIR_MED", "AIR_HI", "MVP",
	)

	for _, s := range stats {
		marker := " "
		if focusID != "" && s.PlayerID == focusID {
			marker = ">"
		}
		mvp := ""
		if s.MVP {
			mvp = "*"
		}
		table.Append(
			marker,
			s.Name,
			s.Team.String(),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.Goals),
			strconv.Itoa(s.Assists),
			strconv.Itoa(s.Saves),
			strconv.Itoa(s.Shots),
			strconv.Itoa(s.PointsScore),
			strconv.Itoa(s.PlayScore),
			intOrDash(s.AvgBoost),
			pctOrDash(s.ClosestPercent),
			secs(s.AttackingHalfTime),
			secs(s.DefendingHalfTime),
			secs(s.MidfieldTime),
			secs(s.AirtimeLow),
			secs(s.AirtimeMedium),
			secs(s.AirtimeHigh),
			mvp,
		)
	}
	table.Render()
}

// PrintTeamTable prints the per-team aggregates.
func PrintTeamTable(w io.Writer, teams []model.TeamStats) {
	table := newTable(w)
	table.Header("TEAM", "PLAYERS", "SCORE", "AVG_SCORE", "G", "A", "SV", "SH",
		"BOOST", "POSS%", "CLOSEST%", "KO_WINS", "ATT_HALF", "DEF_HALF",
		"ORANGE_ZONE", "BLUE_ZONE", "MID", "AIR_LO", "AIR_MED", "AIR_HI")

	for _, t := range teams {
		poss := "—"
		if t.PossessionPercent != nil {
			poss = fmt.Sprintf("%.1f%%", *t.PossessionPercent)
		}
		table.Append(
			t.Team.String(),
			strconv.Itoa(t.Players),
			strconv.Itoa(t.Score),
			strconv.Itoa(t.AvgScore),
			strconv.Itoa(t.Goals),
			strconv.Itoa(t.Assists),
			strconv.Itoa(t.Saves),
			strconv.Itoa(t.Shots),
			intOrDash(t.AvgBoost),
			poss,
			pctOrDash(t.ClosestPercent),
			intOrDash(t.KickoffWins),
			secs(t.AttackingHalfTime),
			secs(t.DefendingHalfTime),
			secs(t.OrangeZoneTime),
			secs(t.BlueZoneTime),
			secs(t.MidfieldTime),
			secs(t.AirTime),
			secs(t.AirtimeMedium),
			secs(t.AirtimeHigh),
		)
	}
	table.Render()
}

// PrintGoalTable prints goals in replay order with the ball position at the goal.
func PrintGoalTable(w io.Writer, goals []model.GoalStats) {
	if len(goals) == 0 {
		fmt.Fprintln(w, "No goals.")
		return
	}
	table := newTable(w)
	table.Header("#", "FRAME", "CLOCK", "SCORER", "TEAM", "BALL_X", "BALL_Y", "BALL_Z")

	for _, g := range goals {
		clock := "—"
		if g.Second != nil {
			clock = formatClock(*g.Second)
		}
		x, y, z := "—", "—", "—"
		if g.BallPosition != nil {
			x = fmt.Sprintf("%.0f", g.BallPosition.X)
			y = fmt.Sprintf("%.0f", g.BallPosition.Y)
			z = fmt.Sprintf("%.0f", g.BallPosition.Z)
		}
		table.Append(
			strconv.Itoa(g.Index+1),
			strconv.Itoa(g.Frame),
			clock,
			g.ScorerName,
			g.ScorerTeam.String(),
			x, y, z,
		)
	}
	table.Render()
}

// PrintKickoffTable prints each evaluated kickoff and its winner.
func PrintKickoffTable(w io.Writer, results []model.KickoffResult) {
	if len(results) == 0 {
		return
	}
	table := newTable(w)
	table.Header("CLOCK", "CAUSE", "WINNER")
	for _, k := range results {
		table.Append(formatClock(k.Second), k.Cause, k.Winner.String())
	}
	table.Render()
}

// PrintPlayerAggregateOverview prints cross-replay aggregates, one row per player.
func PrintPlayerAggregateOverview(w io.Writer, aggs []model.PlayerAggregate) {
	table := newTable(w)
	table.Header("PLAYER", "MATCHES", "WIN%", "MVPS", "AVG_SCORE", "G", "A", "SV", "SH",
		"SHOOT%", "BOOST", "CLOSEST%", "ATT%", "AIR")

	for _, a := range aggs {
		boost := "—"
		if a.AvgBoost != nil {
			boost = fmt.Sprintf("%.0f", *a.AvgBoost)
		}
		table.Append(
			a.Name,
			strconv.Itoa(a.Matches),
			fmt.Sprintf("%.0f%%", a.WinPct()),
			strconv.Itoa(a.MVPs),
			fmt.Sprintf("%.0f", a.AvgScore()),
			strconv.Itoa(a.Goals),
			strconv.Itoa(a.Assists),
			strconv.Itoa(a.Saves),
			strconv.Itoa(a.Shots),
			fmt.Sprintf("%.0f%%", a.ShootingPct()),
			boost,
			pctOrDash(a.ClosestPercent),
			fmt.Sprintf("%.0f%%", a.AttackingShare()),
			secs(a.AirtimeLow),
		)
	}
	table.Render()
}

// TeamRows returns the report's team aggregates in display order.
func TeamRows(rep *model.Report) []model.TeamStats {
	out := make([]model.TeamStats, 0, len(model.Teams))
	for _, team := range model.Teams {
		if ts, ok := rep.Teams[team]; ok {
			out = append(out, *ts)
		}
	}
	return out
}

// formatClock renders aligned seconds as m:ss; overtime seconds are negative
// and shown with a leading "+".
func formatClock(sec int) string {
	sign := ""
	if sec < 0 {
		sign = "+"
		sec = -sec
	}
	return fmt.Sprintf("%s%d:%02d", sign, sec/60, sec%60)
}

func secs(v float64) string { return fmt.Sprintf("%.1fs", v) }

func intOrDash(v *int) string {
	if v == nil {
		return "—"
	}
	return strconv.Itoa(*v)
}

func pctOrDash(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", *v)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
