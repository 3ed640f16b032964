package aggregator

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/pable/go-rl-metrics/internal/clock"
	"github.com/pable/go-rl-metrics/internal/model"
)

// PointsConfig weights the scoreboard events that make up a player's points score.
type PointsConfig struct {
	Goal   int
	Assist int
	Save   int
	Shot   int
}

// Config holds the constants of the analytics. It carries no state between runs.
type Config struct {
	KickoffDelay          int        // seconds after a goal's aligned second to read the next kickoff
	OpeningKickoffSecond  int        // second at which the opening kickoff is read
	OvertimeKickoffSecond int        // second at which the overtime kickoff is read
	ZoneThreshold         float64    // |y| beyond which a sample is in a team's zone
	HeightBounds          [3]float64 // low, medium, high altitude thresholds
	Points                PointsConfig
}

// DefaultConfig returns the standard analysis constants.
func DefaultConfig() Config {
	return Config{
		KickoffDelay:          2,
		OpeningKickoffSecond:  299,
		OvertimeKickoffSecond: -1,
		ZoneThreshold:         2000,
		HeightBounds:          [3]float64{120, 250, 600},
		Points:                PointsConfig{Goal: 50, Assist: 25, Save: 25, Shot: 15},
	}
}

// Aggregate derives the match report from a reduced replay. Statistics that
// cannot be computed are recorded in Extra.Unavailable and left nil.
func Aggregate(raw *model.RawMatch, cfg Config) (*model.Report, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil RawMatch")
	}

	clk := clock.New(raw.Clock)
	matchSeconds := clk.Len()

	rep := &model.Report{
		RunID:      uuid.NewString(),
		ReplayHash: raw.ReplayHash,
		Metadata:   make(map[string]any, len(raw.Metadata)+1),
		Teams:      make(map[model.Team]*model.TeamStats, len(model.Teams)),
	}
	for k, v := range raw.Metadata {
		rep.Metadata[k] = v
	}
	rep.Metadata["MatchTime"] = clk.MatchTime()
	rep.Extra = model.Extra{
		Overtime:     clk.Overtime(),
		MatchSeconds: matchSeconds,
		ServerName:   raw.ServerName,
		Playlist:     raw.Playlist,
		MaxTeamSize:  raw.MaxTeamSize,
		Warnings:     append([]model.Warning(nil), raw.Warnings...),
	}

	players := raw.PlayingPlayers()
	byRef := positionsByRef(raw.Positions)

	// ---- Pass 1: scoreboard fields and points. ----

	rows := make([]model.PlayerMatchStats, len(players))
	rowByEntity := make(map[int]*model.PlayerMatchStats, len(players))
	for i, p := range players {
		points := p.Goals*cfg.Points.Goal + p.Assists*cfg.Points.Assist +
			p.Saves*cfg.Points.Save + p.Shots*cfg.Points.Shot
		row := model.PlayerMatchStats{
			ReplayHash:  raw.ReplayHash,
			PlayerID:    p.UniqueID,
			EntityID:    p.EntityID,
			Name:        p.Name,
			Team:        p.Team,
			Bot:         p.Bot,
			Car:         p.Car,
			Score:       p.Score,
			Goals:       p.Goals,
			Shots:       p.Shots,
			Assists:     p.Assists,
			Saves:       p.Saves,
			PointsScore: points,
			PlayScore:   p.Score - points,
			JoinFrame:   p.JoinFrame,
			Camera:      p.Camera,
		}
		if p.LeaveFrame >= 0 {
			lf := p.LeaveFrame
			row.LeaveFrame = &lf
		}
		rows[i] = row
		rowByEntity[p.EntityID] = &rows[i]
	}

	// ---- Pass 2: zone and height occupancy. ----

	for _, row := range rowByEntity {
		samples := byRef[model.Ref(row.EntityID)]
		if len(samples) == 0 {
			rep.MarkUnavailable("zones:"+row.PlayerID, "no position samples for "+row.Name)
			continue
		}
		occ := occupancy(samples, matchSeconds, cfg)
		if row.Team == model.TeamOrange {
			row.AttackingHalfTime, row.DefendingHalfTime = occ.BlueSide, occ.OrangeSide
		} else {
			row.AttackingHalfTime, row.DefendingHalfTime = occ.OrangeSide, occ.BlueSide
		}
		row.OrangeZoneTime = occ.OrangeZone
		row.BlueZoneTime = occ.BlueZone
		row.MidfieldTime = occ.Midfield
		row.AirtimeLow = occ.AirtimeLow
		row.AirtimeMedium = occ.AirtimeMedium
		row.AirtimeHigh = occ.AirtimeHigh
	}
	if ball := byRef[model.BallRef]; len(ball) > 0 {
		occ := occupancy(ball, matchSeconds, cfg)
		rep.Extra.Ball = &occ
	} else {
		rep.MarkUnavailable("ball_zones", "no ball position samples")
	}

	// ---- Pass 3: boost economy. ----

	for id, row := range rowByEntity {
		row.AvgBoost = averageBoost(raw.Boosts[id], clk)
	}

	// ---- Pass 4: proximity to the ball, per aligned second. ----

	snaps := snapshots(raw.Positions, clk)
	prox := proximity(snaps, rowByEntity)
	for id, row := range rowByEntity {
		row.FramesClosest = prox.ticks[id]
		if prox.total > 0 {
			pct := round2(float64(prox.ticks[id]) / float64(prox.total) * 100)
			row.ClosestPercent = &pct
		}
	}
	if prox.total == 0 {
		rep.MarkUnavailable("closest_percent", "no second with both ball and player positions")
	}

	// ---- Pass 5: possession share. ----

	possession := possessionShare(raw.Possession, raw.Goals, raw.NumFrames, clk)

	// ---- Pass 6: kickoffs. ----

	kick, kickWarnings, err := kickoffs(raw.Goals, snaps, clk, cfg)
	rep.Extra.Warnings = append(rep.Extra.Warnings, kickWarnings...)
	switch {
	case err == nil:
		total := kick.Total()
		rep.Extra.Kickoffs = &total
		rep.Extra.KickoffResults = kick.Results
	case errors.Is(err, ErrKickoffAmbiguous):
		rep.MarkUnavailable("kickoffs", err.Error())
		kick = nil
	default:
		return nil, fmt.Errorf("kickoffs: %w", err)
	}

	// ---- Pass 7: goals and game-winning goal. ----

	idByName := make(map[string]string, len(rows))
	for _, r := range rows {
		idByName[r.Name] = r.PlayerID
	}
	rep.Goals = goalStats(raw.Goals, byRef[model.BallRef], clk, idByName)
	if name, ok := gameWinningGoal(raw.Goals); ok {
		rep.Extra.GWGName = name
		rep.Extra.GWGID = idByName[name]
	} else if len(raw.Goals) == 0 {
		rep.MarkUnavailable("gwg", "no goals")
	} else {
		rep.MarkUnavailable("gwg", "final score is level")
	}

	// ---- Pass 8: MVP. ----

	if mvp, tie := selectMVP(rows); len(tie) > 1 {
		rep.Extra.MVPTie = tie
		rep.MarkUnavailable("mvp", fmt.Sprintf("tied on score between %d players", len(tie)))
	} else if mvp >= 0 {
		rows[mvp].MVP = true
		rep.Extra.MVPName = rows[mvp].Name
		rep.Extra.MVPID = rows[mvp].PlayerID
	}

	// ---- Pass 9: team aggregation. ----

	for _, team := range model.Teams {
		ts := teamStats(raw.ReplayHash, team, rows, prox.total)
		if share, ok := possession[team]; ok {
			ts.PossessionPercent = &share
		}
		if kick != nil {
			wins := kick.Wins[team]
			ts.KickoffWins = &wins
		}
		rep.Teams[team] = ts
	}
	if len(possession) == 0 {
		rep.MarkUnavailable("possession", "no possession samples")
	}

	rep.Players = rows
	return rep, nil
}

// positionsByRef splits the position series per ref, keeping frame order.
func positionsByRef(positions []model.PositionSample) map[model.Ref][]model.PositionSample {
	out := make(map[model.Ref][]model.PositionSample)
	for _, p := range positions {
		out[p.Ref] = append(out[p.Ref], p)
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
