package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored replays",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replays, err := db.ListReplays()
	if err != nil {
		return fmt.Errorf("list replays: %w", err)
	}
	if len(replays) == 0 {
		fmt.Fprintln(os.Stdout, "No replays stored yet. Run 'rlmetrics parse <replay.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-19s  %-10s  %6s  %s\n",
		"HASH", "MAP", "DATE", "TYPE", "SCORE", "SECS")
	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-19s  %-10s  %6s  %s\n",
		"──────────────", "────────────────", "───────────────────", "──────────", "──────", "────")
	for _, r := range replays {
		score := fmt.Sprintf("%d-%d", r.BlueScore, r.OrangeScore)
		if r.Overtime {
			score += "*"
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-19s  %-10s  %6s  %d\n",
			r.ReplayHash[:min(12, len(r.ReplayHash))], r.MapName, r.MatchDate, r.MatchType, score, r.MatchSeconds)
	}
	return nil
}
