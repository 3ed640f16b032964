package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/aggregator"
	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/report"
	"github.com/pable/go-rl-metrics/internal/storage"
)

var playerLast int

// playerCmd is the cobra command for cross-replay aggregate analysis of one or more players.
var playerCmd = &cobra.Command{
	Use:   "player <player-id> [<player-id>...]",
	Short: "Cross-replay analysis for one or more players",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlayer,
}

func init() {
	playerCmd.Flags().IntVar(&playerLast, "last", 0, "only use the N most recent replays")
}

// runPlayer loads every stored row for each player id, rolls them up, and
// prints the aggregate table followed by per-replay history.
func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	var aggs []model.PlayerAggregate
	var histories [][]model.PlayerMatchResult
	for _, id := range args {
		hist, err := db.GetPlayerHistory(id)
		if err != nil {
			return fmt.Errorf("query history for %s: %w", id, err)
		}
		if len(hist) == 0 {
			fmt.Fprintf(os.Stderr, "No data found for player %s\n", id)
			continue
		}
		if playerLast > 0 && len(hist) > playerLast {
			hist = hist[:playerLast]
		}
		aggs = append(aggs, aggregator.PlayerHistory(hist))
		histories = append(histories, hist)
	}
	if len(aggs) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n--- Overview ---\n\n")
	report.PrintPlayerAggregateOverview(os.Stdout, aggs)

	for i, hist := range histories {
		fmt.Fprintf(os.Stdout, "\n--- %s: replays ---\n\n", aggs[i].Name)
		fmt.Fprintf(os.Stdout, "%-12s  %-19s  %-16s  %-6s  %5s  %3s  %3s  %3s  %s\n",
			"HASH", "DATE", "MAP", "TEAM", "SCORE", "G", "A", "SV", "RESULT")
		for _, h := range hist {
			result := "L"
			if h.Won {
				result = "W"
			}
			if h.Stats.MVP {
				result += " (MVP)"
			}
			fmt.Fprintf(os.Stdout, "%-12s  %-19s  %-16s  %-6s  %5s  %3d  %3d  %3d  %s\n",
				h.Stats.ReplayHash[:min(12, len(h.Stats.ReplayHash))], h.MatchDate, h.MapName,
				h.Stats.Team, strconv.Itoa(h.Stats.Score), h.Stats.Goals, h.Stats.Assists, h.Stats.Saves, result)
		}
	}
	return nil
}
