package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/storage"
)

var exportOut string

// exportCmd writes the stored report document of one replay.
var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Export a stored replay report as JSON",
	Long: `Write the four-section report document (metadata, player_data, team_data,
extra_data) of a stored replay to stdout or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no replay found with hash prefix %q", args[0])
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := exportByHash(db, replay.ReplayHash, w); err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	}
	return nil
}

func exportByHash(db *storage.DB, hash string, w io.Writer) error {
	body, err := db.GetReportJSON(hash)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	if body == nil {
		return fmt.Errorf("no stored report for %s; re-run parse with --reparse", hash[:min(12, len(hash))])
	}
	if _, err := w.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
