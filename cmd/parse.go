package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/aggregator"
	"github.com/pable/go-rl-metrics/internal/metrics"
	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/parser"
	"github.com/pable/go-rl-metrics/internal/report"
	"github.com/pable/go-rl-metrics/internal/storage"
)

var (
	focusPlayerID   string
	parseJSON       bool
	metricsTextfile string
	parseReparse    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <replay.json[.gz|.bz2|.zst]>",
	Short: "Parse a decoded replay and store metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&focusPlayerID, "player", "", "highlight player by unique id")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the report document as JSON instead of tables")
	parseCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write pipeline counters in Prometheus text format to this path")
	parseCmd.Flags().BoolVar(&parseReparse, "reparse", false, "analyze again even if the replay is already stored")
}

func runParse(cmd *cobra.Command, args []string) error {
	replayPath := args[0]

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	m := metrics.NewManager()
	textfile := metricsTextfile
	if textfile == "" {
		textfile = cfg.MetricsTextfile
	}
	if textfile != "" {
		defer func() {
			if err := m.WriteTextfile(textfile); err != nil {
				logger.Warn("metrics textfile not written", "path", textfile, "err", err)
			}
		}()
	}

	if !parseJSON {
		fmt.Fprintf(os.Stdout, "Parsing %s...\n", replayPath)
	}
	raw, err := parser.ParseReplay(replayPath, parser.WithLogger(logger), parser.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("parse replay: %w", err)
	}

	exists, err := db.ReplayExists(raw.ReplayHash)
	if err != nil {
		return fmt.Errorf("check replay: %w", err)
	}
	if exists && !parseReparse {
		if parseJSON {
			return exportByHash(db, raw.ReplayHash, os.Stdout)
		}
		fmt.Fprintf(os.Stdout, "Replay %s already stored - showing cached results.\n\n", raw.ReplayHash[:12])
		return showByHash(db, raw.ReplayHash)
	}

	start := time.Now()
	rep, err := aggregator.Aggregate(raw, cfg.Analysis())
	if err != nil {
		m.RecordError("aggregate")
		return fmt.Errorf("aggregate: %w", err)
	}
	m.ObserveStage("aggregate", start)
	m.RecordReplay()
	for stat, reason := range rep.Extra.Unavailable {
		logger.Warn("statistic unavailable", "stat", stat, "reason", reason)
	}

	doc := report.BuildDocument(rep)
	if err := storeReport(db, rep, doc); err != nil {
		return err
	}

	if parseJSON {
		return doc.WriteJSON(os.Stdout)
	}
	printReport(report.Summary(rep), rep.Players, report.TeamRows(rep), rep.Goals, rep.Extra)
	return nil
}

// storeReport persists the replay row first; the stat tables reference it.
func storeReport(db *storage.DB, rep *model.Report, doc *report.Document) error {
	body, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := db.InsertReplay(report.Summary(rep)); err != nil {
		return fmt.Errorf("insert replay: %w", err)
	}
	if err := db.InsertPlayerMatchStats(rep.Players); err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}
	if err := db.InsertTeamStats(report.TeamRows(rep)); err != nil {
		return fmt.Errorf("insert team stats: %w", err)
	}
	if err := db.InsertGoals(rep.ReplayHash, rep.Goals); err != nil {
		return fmt.Errorf("insert goals: %w", err)
	}
	if err := db.InsertReportJSON(rep.ReplayHash, rep.RunID, body); err != nil {
		return fmt.Errorf("insert report json: %w", err)
	}
	return nil
}

func printReport(s model.ReplaySummary, players []model.PlayerMatchStats, teams []model.TeamStats, goals []model.GoalStats, extra model.Extra) {
	report.PrintMatchSummary(os.Stdout, s)
	report.PrintPlayerTable(os.Stdout, players, focusPlayerID)
	fmt.Fprintln(os.Stdout)
	report.PrintTeamTable(os.Stdout, teams)
	fmt.Fprintln(os.Stdout)
	report.PrintGoalTable(os.Stdout, goals)
	fmt.Fprintln(os.Stdout)
	report.PrintKickoffTable(os.Stdout, extra.KickoffResults)
	report.PrintExtra(os.Stdout, extra)
	report.PrintNotices(os.Stdout, extra)
}
