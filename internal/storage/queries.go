package storage

import (
	"database/sql"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/pable/go-rl-metrics/internal/model"
)

// ReplayExists returns true if a replay with the given hash is already stored.
func (db *DB) ReplayExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM replays WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertReplay inserts a replay record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertReplay(s model.ReplaySummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO replays(hash, run_id, replay_name, map_name, match_date, match_type,
			blue_score, orange_score, num_frames, match_seconds, overtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ReplayHash, s.RunID, s.ReplayName, s.MapName, s.MatchDate, s.MatchType,
		s.BlueScore, s.OrangeScore, s.NumFrames, s.MatchSeconds, boolInt(s.Overtime),
	)
	return err
}

// InsertPlayerMatchStats bulk-inserts player match stats in a transaction.
func (db *DB) InsertPlayerMatchStats(stats []model.PlayerMatchStats) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_match_stats(
			replay_hash, player_id, entity_id, name, team, bot, car,
			score, goals, shots, assists, saves, points_score, play_score,
			avg_boost, frames_closest, closest_percent,
			attacking_half_time, defending_half_time,
			orange_zone_time, blue_zone_time, midfield_time,
			airtime_low, airtime_medium, airtime_high,
			mvp, join_frame, leave_frame
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err = stmt.Exec(
			s.ReplayHash, s.PlayerID, s.EntityID, s.Name, s.Team.String(), boolInt(s.Bot), s.Car,
			s.Score, s.Goals, s.Shots, s.Assists, s.Saves, s.PointsScore, s.PlayScore,
			nullInt(s.AvgBoost), s.FramesClosest, nullFloat(s.ClosestPercent),
			s.AttackingHalfTime, s.DefendingHalfTime,
			s.OrangeZoneTime, s.BlueZoneTime, s.MidfieldTime,
			s.AirtimeLow, s.AirtimeMedium, s.AirtimeHigh,
			boolInt(s.MVP), s.JoinFrame, nullInt(s.LeaveFrame),
		)
		if err != nil {
			return fmt.Errorf("insert player_match_stats for %s: %w", s.PlayerID, err)
		}
	}
	return tx.Commit()
}

// InsertTeamStats bulk-inserts the team aggregates in a transaction.
func (db *DB) InsertTeamStats(stats []model.TeamStats) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_stats(
			replay_hash, team, players, score, avg_score, avg_boost,
			goals, assists, saves, shots, points_score, play_score,
			frames_closest, closest_percent,
			attacking_half_time, defending_half_time,
			orange_zone_time, blue_zone_time, midfield_time,
			air_time, airtime_medium, airtime_high,
			possession_percent, kickoff_wins
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range stats {
		_, err = stmt.Exec(
			t.ReplayHash, t.Team.String(), t.Players, t.Score, t.AvgScore, nullInt(t.AvgBoost),
			t.Goals, t.Assists, t.Saves, t.Shots, t.PointsScore, t.PlayScore,
			t.FramesClosest, nullFloat(t.ClosestPercent),
			t.AttackingHalfTime, t.DefendingHalfTime,
			t.OrangeZoneTime, t.BlueZoneTime, t.MidfieldTime,
			t.AirTime, t.AirtimeMedium, t.AirtimeHigh,
			nullFloat(t.PossessionPercent), nullInt(t.KickoffWins),
		)
		if err != nil {
			return fmt.Errorf("insert team_stats for %s: %w", t.Team, err)
		}
	}
	return tx.Commit()
}

// InsertGoals bulk-inserts the enriched goals of one replay.
func (db *DB) InsertGoals(replayHash string, goals []model.GoalStats) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO goals(replay_hash, idx, frame, second, scorer_name, scorer_id, team, ball_x, ball_y, ball_z)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range goals {
		var x, y, z sql.NullFloat64
		if g.BallPosition != nil {
			x = sql.NullFloat64{Float64: g.BallPosition.X, Valid: true}
			y = sql.NullFloat64{Float64: g.BallPosition.Y, Valid: true}
			z = sql.NullFloat64{Float64: g.BallPosition.Z, Valid: true}
		}
		_, err = stmt.Exec(replayHash, g.Index, g.Frame, nullInt(g.Second),
			g.ScorerName, g.ScorerID, g.ScorerTeam.String(), x, y, z)
		if err != nil {
			return fmt.Errorf("insert goal %d: %w", g.Index, err)
		}
	}
	return tx.Commit()
}

// InsertReportJSON stores the rendered output document of a replay.
func (db *DB) InsertReportJSON(replayHash, runID string, body []byte) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO report_json(replay_hash, run_id, body) VALUES (?, ?, ?)`,
		replayHash, runID, string(body))
	return err
}

const replayColumns = `hash, run_id, replay_name, map_name, match_date, match_type,
		blue_score, orange_score, num_frames, match_seconds, overtime`

func scanReplay(row interface{ Scan(...any) error }) (model.ReplaySummary, error) {
	var s model.ReplaySummary
	var overtime int
	err := row.Scan(&s.ReplayHash, &s.RunID, &s.ReplayName, &s.MapName, &s.MatchDate, &s.MatchType,
		&s.BlueScore, &s.OrangeScore, &s.NumFrames, &s.MatchSeconds, &overtime)
	s.Overtime = overtime != 0
	return s, err
}

// ListReplays returns all stored replay summaries ordered by match_date desc.
func (db *DB) ListReplays() ([]model.ReplaySummary, error) {
	rows, err := db.conn.Query(`SELECT ` + replayColumns + ` FROM replays ORDER BY match_date DESC, hash`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReplaySummary
	for rows.Next() {
		s, err := scanReplay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetReplayByPrefix finds the first replay whose hash starts with the given prefix.
func (db *DB) GetReplayByPrefix(prefix string) (*model.ReplaySummary, error) {
	s, err := scanReplay(db.conn.QueryRow(
		`SELECT `+replayColumns+` FROM replays WHERE hash LIKE ? ORDER BY hash LIMIT 1`, prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPlayerMatchStats returns all player stats for a replay hash.
func (db *DB) GetPlayerMatchStats(replayHash string) ([]model.PlayerMatchStats, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, entity_id, name, team, bot, car,
		       score, goals, shots, assists, saves, points_score, play_score,
		       avg_boost, frames_closest, closest_percent,
		       attacking_half_time, defending_half_time,
		       orange_zone_time, blue_zone_time, midfield_time,
		       airtime_low, airtime_medium, airtime_high,
		       mvp, join_frame, leave_frame
		FROM player_match_stats WHERE replay_hash = ?
		ORDER BY team, score DESC, entity_id`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMatchStats
	for rows.Next() {
		var s model.PlayerMatchStats
		var teamStr string
		var bot, mvp int
		var avgBoost, leaveFrame sql.NullInt64
		var closest sql.NullFloat64
		if err := rows.Scan(
			&s.PlayerID, &s.EntityID, &s.Name, &teamStr, &bot, &s.Car,
			&s.Score, &s.Goals, &s.Shots, &s.Assists, &s.Saves, &s.PointsScore, &s.PlayScore,
			&avgBoost, &s.FramesClosest, &closest,
			&s.AttackingHalfTime, &s.DefendingHalfTime,
			&s.OrangeZoneTime, &s.BlueZoneTime, &s.MidfieldTime,
			&s.AirtimeLow, &s.AirtimeMedium, &s.AirtimeHigh,
			&mvp, &s.JoinFrame, &leaveFrame,
		); err != nil {
			return nil, err
		}
		s.ReplayHash = replayHash
		s.Team = model.ParseTeam(teamStr)
		s.Bot = bot != 0
		s.MVP = mvp != 0
		s.AvgBoost = intPtr(avgBoost)
		s.ClosestPercent = floatPtr(closest)
		s.LeaveFrame = intPtr(leaveFrame)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlayerHistory returns every stored row of one player joined with its
// replay outcome, newest replay first.
func (db *DB) GetPlayerHistory(playerID string) ([]model.PlayerMatchResult, error) {
	rows, err := db.conn.Query(`
		SELECT p.replay_hash, p.name, p.team, p.score, p.goals, p.shots, p.assists, p.saves,
		       p.avg_boost, p.closest_percent, p.attacking_half_time, p.defending_half_time,
		       p.airtime_low, p.mvp,
		       r.map_name, r.match_date, r.blue_score, r.orange_score
		FROM player_match_stats p
		JOIN replays r ON r.hash = p.replay_hash
		WHERE p.player_id = ?
		ORDER BY r.match_date DESC, p.replay_hash`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMatchResult
	for rows.Next() {
		var res model.PlayerMatchResult
		s := &res.Stats
		var teamStr string
		var mvp, blue, orange int
		var avgBoost sql.NullInt64
		var closest sql.NullFloat64
		if err := rows.Scan(
			&s.ReplayHash, &s.Name, &teamStr, &s.Score, &s.Goals, &s.Shots, &s.Assists, &s.Saves,
			&avgBoost, &closest, &s.AttackingHalfTime, &s.DefendingHalfTime,
			&s.AirtimeLow, &mvp,
			&res.MapName, &res.MatchDate, &blue, &orange,
		); err != nil {
			return nil, err
		}
		s.PlayerID = playerID
		s.Team = model.ParseTeam(teamStr)
		s.MVP = mvp != 0
		s.AvgBoost = intPtr(avgBoost)
		s.ClosestPercent = floatPtr(closest)
		switch s.Team {
		case model.TeamBlue:
			res.Won = blue > orange
		case model.TeamOrange:
			res.Won = orange > blue
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// GetTeamStats returns the team aggregates for a replay, orange first.
func (db *DB) GetTeamStats(replayHash string) ([]model.TeamStats, error) {
	rows, err := db.conn.Query(`
		SELECT team, players, score, avg_score, avg_boost,
		       goals, assists, saves, shots, points_score, play_score,
		       frames_closest, closest_percent,
		       attacking_half_time, defending_half_time,
		       orange_zone_time, blue_zone_time, midfield_time,
		       air_time, airtime_medium, airtime_high,
		       possession_percent, kickoff_wins
		FROM team_stats WHERE replay_hash = ?
		ORDER BY team DESC`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamStats
	for rows.Next() {
		var t model.TeamStats
		var teamStr string
		var avgBoost, kickoffWins sql.NullInt64
		var closest, possession sql.NullFloat64
		if err := rows.Scan(
			&teamStr, &t.Players, &t.Score, &t.AvgScore, &avgBoost,
			&t.Goals, &t.Assists, &t.Saves, &t.Shots, &t.PointsScore, &t.PlayScore,
			&t.FramesClosest, &closest,
			&t.AttackingHalfTime, &t.DefendingHalfTime,
			&t.OrangeZoneTime, &t.BlueZoneTime, &t.MidfieldTime,
			&t.AirTime, &t.AirtimeMedium, &t.AirtimeHigh,
			&possession, &kickoffWins,
		); err != nil {
			return nil, err
		}
		t.ReplayHash = replayHash
		t.Team = model.ParseTeam(teamStr)
		t.AvgBoost = intPtr(avgBoost)
		t.KickoffWins = intPtr(kickoffWins)
		t.ClosestPercent = floatPtr(closest)
		t.PossessionPercent = floatPtr(possession)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetGoals returns the goals of a replay in scoring order.
func (db *DB) GetGoals(replayHash string) ([]model.GoalStats, error) {
	rows, err := db.conn.Query(`
		SELECT idx, frame, second, scorer_name, scorer_id, team, ball_x, ball_y, ball_z
		FROM goals WHERE replay_hash = ? ORDER BY idx`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GoalStats
	for rows.Next() {
		var g model.GoalStats
		var teamStr string
		var second sql.NullInt64
		var x, y, z sql.NullFloat64
		if err := rows.Scan(&g.Index, &g.Frame, &second, &g.ScorerName, &g.ScorerID, &teamStr, &x, &y, &z); err != nil {
			return nil, err
		}
		g.Second = intPtr(second)
		g.ScorerTeam = model.ParseTeam(teamStr)
		if x.Valid && y.Valid && z.Valid {
			g.BallPosition = &r3.Vector{X: x.Float64, Y: y.Float64, Z: z.Float64}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetReportJSON returns the stored output document of a replay, or nil when absent.
func (db *DB) GetReportJSON(replayHash string) ([]byte, error) {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM report_json WHERE replay_hash = ?`, replayHash).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
