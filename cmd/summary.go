package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all replays stored in the database:
replay count, date range, map breakdown, most active players,
and match type distribution.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func newCLITable() *tablewriter.Table {
	return tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalReplays == 0 {
		fmt.Fprintln(os.Stdout, "No replays stored yet. Run 'rlmetrics parse <replay.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Replays stored : %d\n", ov.TotalReplays)
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", ov.EarliestMatch, ov.LatestMatch)
	fmt.Fprintf(os.Stdout, "  Unique maps    : %d\n", ov.UniqueMaps)
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Total goals    : %d\n", ov.TotalGoals)
	fmt.Fprintf(os.Stdout, "  Overtime games : %d\n", ov.OvertimeGames)

	maps, err := db.GetMapStats()
	if err != nil {
		return fmt.Errorf("get map stats: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Maps ---\n\n")
	mt := newCLITable()
	mt.Header("MAP", "MATCHES", "BLUE WINS", "ORANGE WINS", "BLUE WIN%")
	for _, m := range maps {
		total := m.BlueWins + m.OrangeWins
		bluePct := 0.0
		if total > 0 {
			bluePct = 100.0 * float64(m.BlueWins) / float64(total)
		}
		mt.Append(
			m.MapName,
			fmt.Sprintf("%d", m.Matches),
			fmt.Sprintf("%d", m.BlueWins),
			fmt.Sprintf("%d", m.OrangeWins),
			fmt.Sprintf("%.0f%%", bluePct),
		)
	}
	mt.Render()

	players, err := db.GetTopPlayersByMatches(10)
	if err != nil {
		return fmt.Errorf("get top players: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Most Active Players ---\n\n")
	pt := newCLITable()
	pt.Header("NAME", "ID", "MATCHES", "AVG SCORE", "GOALS", "AVG BOOST", "MVPS")
	for _, p := range players {
		boost := "—"
		if p.AvgBoost.Valid {
			boost = fmt.Sprintf("%.0f", p.AvgBoost.Float64)
		}
		pt.Append(
			p.Name,
			p.PlayerID,
			fmt.Sprintf("%d", p.Matches),
			fmt.Sprintf("%.0f", p.AvgScore),
			fmt.Sprintf("%d", p.Goals),
			boost,
			fmt.Sprintf("%d", p.MVPs),
		)
	}
	pt.Render()

	// Match type breakdown, only when more than one type is present.
	types, err := db.GetMatchTypeCounts()
	if err != nil {
		return fmt.Errorf("get match types: %w", err)
	}
	if len(types) > 1 {
		fmt.Fprintf(os.Stdout, "\n--- Match Types ---\n\n")
		tt := newCLITable()
		tt.Header("TYPE", "MATCHES")
		for _, t := range types {
			tt.Append(t.MatchType, fmt.Sprintf("%d", t.Matches))
		}
		tt.Render()
	}

	return nil
}
