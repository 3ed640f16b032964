package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/report"
	"github.com/pable/go-rl-metrics/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored replay stats by hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&focusPlayerID, "player", "", "highlight player by unique id")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replay, err := db.GetReplayByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query replay: %w", err)
	}
	if replay == nil {
		fmt.Fprintf(os.Stderr, "No replay found with hash prefix %q\n", args[0])
		return nil
	}
	return showByHash(db, replay.ReplayHash)
}

func showByHash(db *storage.DB, hash string) error {
	replay, err := db.GetReplayByPrefix(hash)
	if err != nil || replay == nil {
		return fmt.Errorf("replay not found: %s", hash)
	}
	players, err := db.GetPlayerMatchStats(hash)
	if err != nil {
		return fmt.Errorf("get player stats: %w", err)
	}
	teams, err := db.GetTeamStats(hash)
	if err != nil {
		return fmt.Errorf("get team stats: %w", err)
	}
	goals, err := db.GetGoals(hash)
	if err != nil {
		return fmt.Errorf("get goals: %w", err)
	}

	var extra model.Extra
	body, err := db.GetReportJSON(hash)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	if body != nil {
		doc, err := report.ParseDocument(body)
		if err != nil {
			return err
		}
		extra = doc.ExtraData.Extra
	}

	printReport(*replay, players, teams, goals, extra)
	return nil
}
