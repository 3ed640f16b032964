package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/pable/go-rl-metrics/internal/model"
)

var (
	cHeader = color.New(color.FgCyan, color.Bold)
	cWarn   = color.New(color.FgYellow)
	cError  = color.New(color.FgRed, color.Bold)
	cMuted  = color.New(color.Faint)
)

// PrintExtra prints the match-level facts that do not fit the tables.
func PrintExtra(w io.Writer, extra model.Extra) {
	cHeader.Fprintln(w, "Match")
	fmt.Fprintf(w, "  Match seconds: %d", extra.MatchSeconds)
	if extra.Overtime {
		fmt.Fprint(w, "  (overtime)")
	}
	fmt.Fprintln(w)
	if extra.Kickoffs != nil {
		fmt.Fprintf(w, "  Kickoffs: %d\n", *extra.Kickoffs)
	}
	if extra.MVPName != "" {
		fmt.Fprintf(w, "  MVP: %s\n", extra.MVPName)
	}
	if extra.GWGName != "" {
		fmt.Fprintf(w, "  Game-winning goal: %s\n", extra.GWGName)
	}
	if extra.ServerName != "" {
		fmt.Fprintf(w, "  Server: %s\n", extra.ServerName)
	}
	if extra.Playlist != nil {
		fmt.Fprintf(w, "  Playlist: %d\n", *extra.Playlist)
	}
	if b := extra.Ball; b != nil {
		fmt.Fprintf(w, "  Ball: blue half %.1fs, orange half %.1fs, airborne %.1fs\n",
			b.BlueSide, b.OrangeSide, b.AirtimeLow)
	}
	fmt.Fprintln(w)
}

// PrintNotices highlights statistics that could not be computed and the
// recoverable warnings raised while reducing the replay. It prints nothing
// when there is nothing to report.
func PrintNotices(w io.Writer, extra model.Extra) {
	if len(extra.Unavailable) == 0 && len(extra.Warnings) == 0 {
		return
	}

	if len(extra.Unavailable) > 0 {
		stats := make([]string, 0, len(extra.Unavailable))
		for stat := range extra.Unavailable {
			stats = append(stats, stat)
		}
		sort.Strings(stats)
		cError.Fprintln(w, "Unavailable statistics:")
		for _, stat := range stats {
			fmt.Fprintf(w, "  %s: ", stat)
			cMuted.Fprintln(w, extra.Unavailable[stat])
		}
	}
	if len(extra.MVPTie) > 0 {
		cWarn.Fprintf(w, "MVP tied between: %v\n", extra.MVPTie)
	}

	if len(extra.Warnings) > 0 {
		cWarn.Fprintf(w, "Warnings (%d):\n", len(extra.Warnings))
		for _, wr := range extra.Warnings {
			fmt.Fprintf(w, "  %s\n", wr)
		}
	}
	fmt.Fprintln(w)
}
