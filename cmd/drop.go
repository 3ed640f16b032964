package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd removes the metrics database together with its WAL sidecar files.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database",
	Long:  "Delete the SQLite metrics database and its -wal/-shm files. Stored reports are lost; parse the replays again to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "delete without asking for confirmation")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "Would delete %s (plus -wal/-shm). Pass --force to confirm.\n", dbPath)
		return nil
	}

	removed := 0
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed++
			logger.Debug("removed", "path", p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	if removed == 0 {
		fmt.Fprintln(os.Stdout, "No database at", dbPath)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted %s\n", dbPath)
	return nil
}
