package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
)

// Team represents which side a player is on.
type Team int

const (
	TeamUnknown Team = 0
	TeamBlue    Team = 1
	TeamOrange  Team = 2
)

// TeamFromNum maps the replay's team number (0 = blue, 1 = orange).
func TeamFromNum(n int) Team {
	switch n {
	case 0:
		return TeamBlue
	case 1:
		return TeamOrange
	default:
		return TeamUnknown
	}
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	switch t {
	case TeamBlue:
		return TeamOrange
	case TeamOrange:
		return TeamBlue
	default:
		return TeamUnknown
	}
}

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamOrange:
		return "orange"
	default:
		return "?"
	}
}

// MarshalText encodes the team by name.
func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (t *Team) UnmarshalText(b []byte) error {
	*t = ParseTeam(string(b))
	return nil
}

// ParseTeam is the inverse of String.
func ParseTeam(s string) Team {
	switch s {
	case "blue":
		return TeamBlue
	case "orange":
		return TeamOrange
	default:
		return TeamUnknown
	}
}

// Teams lists the two playing teams in report order.
var Teams = []Team{TeamOrange, TeamBlue}

// ---- Samples emitted by the telemetry extractor ----

// Ref identifies what a position sample belongs to: a player identity's
// entity id, or BallRef.
type Ref int

// BallRef is the sentinel ref for the ball.
const BallRef Ref = -1

func (r Ref) IsBall() bool { return r == BallRef }

func (r Ref) String() string {
	if r == BallRef {
		return "ball"
	}
	return fmt.Sprintf("%d", int(r))
}

type PositionSample struct {
	Ref              Ref
	Frame            int
	Pos              r3.Vector
	Yaw, Pitch, Roll float64
}

type ResourceSample struct {
	Identity int
	Frame    int
	Level    int // 0..255
}

type ClockSample struct {
	Frame            int
	SecondsRemaining int
}

// PossessionSample marks a change of the team that last touched the ball.
type PossessionSample struct {
	Frame int
	Team  Team
}

type Goal struct {
	Frame      int
	ScorerName string
	ScorerTeam Team
}

// PlayerInfo is the last known snapshot of a player identity's attributes.
type PlayerInfo struct {
	EntityID   int
	UniqueID   string
	Name       string
	Team       Team
	Bot        bool
	Score      int
	Goals      int
	Shots      int
	Assists    int
	Saves      int
	Car        string
	Camera     json.RawMessage
	JoinFrame  int
	LeaveFrame int // -1 while still present
	Playing    bool // bound to a unit at least once
}

// MetaPlayer is one entry of the metadata's player stats list.
type MetaPlayer struct {
	Name     string
	Team     Team
	Score    int
	Goals    int
	Assists  int
	Saves    int
	Shots    int
	OnlineID string
	Bot      bool
}

// WarningKind classifies a recoverable condition surfaced in the report.
type WarningKind string

const (
	WarnUnresolvedBinding WarningKind = "unresolved_binding"
	WarnDuplicateBall     WarningKind = "duplicate_ball"
	WarnKickoffSkipped    WarningKind = "kickoff_skipped"
	WarnMissingTeam       WarningKind = "missing_team"
)

type Warning struct {
	Kind    WarningKind `json:"kind"`
	Frame   int         `json:"frame"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (frame %d): %s", w.Kind, w.Frame, w.Message)
}

// RawMatch is the reduced telemetry of one replay. Sample slices are
// append-only and ordered by frame.
type RawMatch struct {
	ReplayHash  string
	Metadata    map[string]any
	MetaPlayers []MetaPlayer
	Goals       []Goal
	NumFrames   int

	Players    map[int]*PlayerInfo // by identity entity id
	Positions  []PositionSample
	Boosts     map[int][]ResourceSample // by identity entity id
	Clock      []ClockSample
	Possession []PossessionSample

	ServerName  string
	Playlist    *int
	MaxTeamSize *int

	Warnings []Warning
}

// PlayingPlayers returns the identities that controlled a unit, ordered by entity id.
func (m *RawMatch) PlayingPlayers() []*PlayerInfo {
	var out []*PlayerInfo
	for _, p := range m.Players {
		if p.Playing {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
