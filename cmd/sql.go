package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Schema overview:
  replays(hash, run_id, replay_name, map_name, match_date, match_type,
    blue_score, orange_score, num_frames, match_seconds, overtime, parsed_at)
  player_match_stats(replay_hash, player_id, entity_id, name, team, bot, car,
    score, goals, shots, assists, saves, points_score, play_score, avg_boost,
    frames_closest, closest_percent, attacking_half_time, defending_half_time,
    orange_zone_time, blue_zone_time, midfield_time,
    airtime_low, airtime_medium, airtime_high, mvp, join_frame, leave_frame)
  team_stats(replay_hash, team, players, score, avg_score, avg_boost, goals, ...,
    possession_percent, kickoff_wins)
  goals(replay_hash, idx, frame, second, scorer_name, scorer_id, team, ball_x, ball_y, ball_z)
  report_json(replay_hash, run_id, body)

Nullable columns (avg_boost, closest_percent, possession_percent, kickoff_wins)
are NULL when the statistic could not be computed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := newCLITable()

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

