package storage

import (
	"database/sql"
	"fmt"
	"strconv"
)

// DBOverview is the headline of the summary command.
type DBOverview struct {
	TotalReplays  int
	EarliestMatch string
	LatestMatch   string
	UniqueMaps    int
	UniquePlayers int
	TotalGoals    int
	OvertimeGames int
}

// MapStat is the per-map breakdown of stored replays.
type MapStat struct {
	MapName    string
	Matches    int
	BlueWins   int
	OrangeWins int
}

// PlayerActivity summarizes one player identity across stored replays.
type PlayerActivity struct {
	PlayerID string
	Name     string
	Matches  int
	AvgScore float64
	Goals    int
	AvgBoost sql.NullFloat64
	MVPs     int
}

// MatchTypeCount counts stored replays per match type.
type MatchTypeCount struct {
	MatchType string
	Matches   int
}

// GetDBOverview returns headline counts across all stored replays.
func (db *DB) GetDBOverview() (DBOverview, error) {
	var ov DBOverview
	var earliest, latest sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(1), MIN(match_date), MAX(match_date),
		       COUNT(DISTINCT map_name), COALESCE(SUM(overtime), 0)
		FROM replays`).Scan(&ov.TotalReplays, &earliest, &latest, &ov.UniqueMaps, &ov.OvertimeGames)
	if err != nil {
		return ov, fmt.Errorf("replay overview: %w", err)
	}
	ov.EarliestMatch = earliest.String
	ov.LatestMatch = latest.String

	if err := db.conn.QueryRow(`SELECT COUNT(DISTINCT player_id) FROM player_match_stats`).Scan(&ov.UniquePlayers); err != nil {
		return ov, fmt.Errorf("player overview: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(1) FROM goals`).Scan(&ov.TotalGoals); err != nil {
		return ov, fmt.Errorf("goal overview: %w", err)
	}
	return ov, nil
}

// GetMapStats returns match counts and wins per map, most played first.
func (db *DB) GetMapStats() ([]MapStat, error) {
	rows, err := db.conn.Query(`
		SELECT map_name, COUNT(1),
		       SUM(CASE WHEN blue_score > orange_score THEN 1 ELSE 0 END),
		       SUM(CASE WHEN orange_score > blue_score THEN 1 ELSE 0 END)
		FROM replays GROUP BY map_name ORDER BY COUNT(1) DESC, map_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapStat
	for rows.Next() {
		var m MapStat
		if err := rows.Scan(&m.MapName, &m.Matches, &m.BlueWins, &m.OrangeWins); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTopPlayersByMatches returns the most frequently seen players.
func (db *DB) GetTopPlayersByMatches(limit int) ([]PlayerActivity, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, MAX(name), COUNT(DISTINCT replay_hash), AVG(score),
		       SUM(goals), AVG(avg_boost), SUM(mvp)
		FROM player_match_stats
		GROUP BY player_id
		ORDER BY COUNT(DISTINCT replay_hash) DESC, SUM(goals) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerActivity
	for rows.Next() {
		var p PlayerActivity
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Matches, &p.AvgScore, &p.Goals, &p.AvgBoost, &p.MVPs); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetMatchTypeCounts returns the number of replays per match type.
func (db *DB) GetMatchTypeCounts() ([]MatchTypeCount, error) {
	rows, err := db.conn.Query(`
		SELECT match_type, COUNT(1) FROM replays GROUP BY match_type ORDER BY COUNT(1) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchTypeCount
	for rows.Next() {
		var t MatchTypeCount
		if err := rows.Scan(&t.MatchType, &t.Matches); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case float64:
				row[i] = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
