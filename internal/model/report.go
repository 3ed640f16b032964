package model

import (
	"encoding/json"

	"github.com/golang/geo/r3"
)

// ---- Aggregated metrics ----

type PlayerMatchStats struct {
	ReplayHash string `json:"-"`
	PlayerID   string `json:"ID"`
	EntityID   int    `json:"-"`
	Name       string `json:"Name"`
	Team       Team   `json:"-"`
	Bot        bool   `json:"Bot"`
	Car        string `json:"Car,omitempty"`

	Score       int `json:"Score"`
	Goals       int `json:"Goals"`
	Shots       int `json:"Shots"`
	Assists     int `json:"Assists"`
	Saves       int `json:"Saves"`
	PointsScore int `json:"Points_Score"`
	PlayScore   int `json:"Play_Score"`

	// Boost economy. Nil when the player has no attributed boost samples.
	AvgBoost *int `json:"AVG_Boost"`

	// Proximity to the ball.
	FramesClosest  int      `json:"Frames_Closest"`
	ClosestPercent *float64 `json:"Closest_Percent"`

	// Zone occupancy, in estimated seconds.
	AttackingHalfTime float64 `json:"Attacking_Half_Time"`
	DefendingHalfTime float64 `json:"Defending_Half_Time"`
	OrangeZoneTime    float64 `json:"Orange_Zone_Time"`
	BlueZoneTime      float64 `json:"Blue_Zone_Time"`
	MidfieldTime      float64 `json:"Midfield_Time"`
	AirtimeLow        float64 `json:"Airtime_Low"`
	AirtimeMedium     float64 `json:"Airtime_Medium"`
	AirtimeHigh       float64 `json:"Airtime_High"`

	MVP        bool            `json:"MVP"`
	JoinFrame  int             `json:"Join_Frame"`
	LeaveFrame *int            `json:"Leave_Frame"`
	Camera     json.RawMessage `json:"Camera,omitempty"`
}

type TeamStats struct {
	ReplayHash string `json:"-"`
	Team       Team   `json:"-"`
	Players    int    `json:"Players"`

	Score       int `json:"Score"`
	AvgScore    int `json:"AVG_Score"`
	AvgBoost    *int `json:"AVG_Boost"`
	Goals       int `json:"Goals"`
	Assists     int `json:"Assists"`
	Saves       int `json:"Saves"`
	Shots       int `json:"Shots"`
	PointsScore int `json:"Points_Score"`
	PlayScore   int `json:"Play_Score"`

	FramesClosest  int      `json:"Frames_Closest"`
	ClosestPercent *float64 `json:"Closest_Percent"`

	AttackingHalfTime float64 `json:"Attacking_Half_Time"`
	DefendingHalfTime float64 `json:"Defending_Half_Time"`
	OrangeZoneTime    float64 `json:"Orange_Zone_Time"`
	BlueZoneTime      float64 `json:"Blue_Zone_Time"`
	MidfieldTime      float64 `json:"Midfield_Time"`
	// AirTime is the low (cumulative) airtime bucket.
	AirTime       float64 `json:"Air_Time"`
	AirtimeMedium float64 `json:"Airtime_Medium"`
	AirtimeHigh   float64 `json:"Airtime_High"`

	PossessionPercent *float64 `json:"Possession"`
	KickoffWins       *int     `json:"Kickoff_Wins"`
}

type GoalStats struct {
	Index        int        `json:"Index"`
	Frame        int        `json:"frame"`
	Second       *int       `json:"Second"`
	ScorerName   string     `json:"PlayerName"`
	ScorerID     string     `json:"PlayerID,omitempty"`
	ScorerTeam   Team       `json:"-"`
	BallPosition *r3.Vector `json:"Position"`
}

// KickoffResult is the outcome of one evaluated kickoff.
type KickoffResult struct {
	Second int    `json:"Second"`
	Cause  string `json:"Cause"` // "opening", "goal", "overtime"
	Winner Team   `json:"Winner"`
}

// ZoneTimes holds ball-level occupancy in estimated seconds.
type ZoneTimes struct {
	OrangeSide    float64 `json:"Ball_Orange_Side"`
	BlueSide      float64 `json:"Ball_Blue_Side"`
	OrangeZone    float64 `json:"Ball_Orange_Zone"`
	BlueZone      float64 `json:"Ball_Blue_Zone"`
	Midfield      float64 `json:"Ball_Midfield"`
	AirtimeLow    float64 `json:"Ball_Airtime_Low"`
	AirtimeMedium float64 `json:"Ball_Airtime_Medium"`
	AirtimeHigh   float64 `json:"Ball_Airtime_High"`
}

type Extra struct {
	Overtime       bool            `json:"Overtime"`
	MatchSeconds   int             `json:"Match_Seconds"`
	Kickoffs       *int            `json:"Kickoffs"`
	KickoffResults []KickoffResult `json:"Kickoff_Results,omitempty"`
	GWGName        string          `json:"GWG_Name"`
	GWGID          string          `json:"GWG_ID"`
	MVPName        string          `json:"MVP_Name"`
	MVPID          string          `json:"MVP_ID"`
	MVPTie         []string        `json:"MVP_Tie,omitempty"`
	Ball           *ZoneTimes      `json:"Ball"`
	ServerName     string          `json:"Server_Name,omitempty"`
	Playlist       *int            `json:"Playlist,omitempty"`
	MaxTeamSize    *int            `json:"Max_Team_Size,omitempty"`
	Warnings       []Warning       `json:"Warnings,omitempty"`

	// Unavailable maps a statistic name to the reason it could not be computed.
	Unavailable map[string]string `json:"Unavailable,omitempty"`
}

// Report is the full analysis of one replay.
type Report struct {
	RunID      string
	ReplayHash string
	Metadata   map[string]any
	Players    []PlayerMatchStats
	Teams      map[Team]*TeamStats
	Goals      []GoalStats
	Extra      Extra
}

// MarkUnavailable records that a statistic could not be computed.
func (r *Report) MarkUnavailable(stat, reason string) {
	if r.Extra.Unavailable == nil {
		r.Extra.Unavailable = make(map[string]string)
	}
	r.Extra.Unavailable[stat] = reason
}

// PlayersOn returns the player rows of one team, preserving report order.
func (r *Report) PlayersOn(t Team) []PlayerMatchStats {
	var out []PlayerMatchStats
	for _, p := range r.Players {
		if p.Team == t {
			out = append(out, p)
		}
	}
	return out
}

// ReplaySummary is a lightweight record for list/show commands.
type ReplaySummary struct {
	ReplayHash   string
	RunID        string
	ReplayName   string
	MapName      string
	MatchDate    string
	MatchType    string
	BlueScore    int
	OrangeScore  int
	NumFrames    int
	MatchSeconds int
	Overtime     bool
}

// PlayerMatchResult is one stored player row with the outcome of its replay.
type PlayerMatchResult struct {
	Stats     PlayerMatchStats
	MapName   string
	MatchDate string
	Won       bool
}

// PlayerAggregate is the cross-replay rollup of one player identity.
type PlayerAggregate struct {
	PlayerID string
	Name     string
	Matches  int
	Wins     int
	MVPs     int

	Score   int
	Goals   int
	Assists int
	Saves   int
	Shots   int

	// Averages over the matches where the statistic was available.
	AvgBoost       *float64
	ClosestPercent *float64

	AttackingHalfTime float64
	DefendingHalfTime float64
	AirtimeLow        float64
}

// AvgScore is the mean scoreboard score per match.
func (a PlayerAggregate) AvgScore() float64 {
	if a.Matches == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.Matches)
}

// WinPct is the share of matches won, 0-100.
func (a PlayerAggregate) WinPct() float64 {
	if a.Matches == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.Matches) * 100
}

// ShootingPct is goals per shot, 0-100.
func (a PlayerAggregate) ShootingPct() float64 {
	if a.Shots == 0 {
		return 0
	}
	return float64(a.Goals) / float64(a.Shots) * 100
}

// AttackingShare is the fraction of half time spent in the opponent's half, 0-100.
func (a PlayerAggregate) AttackingShare() float64 {
	total := a.AttackingHalfTime + a.DefendingHalfTime
	if total == 0 {
		return 0
	}
	return a.AttackingHalfTime / total * 100
}
