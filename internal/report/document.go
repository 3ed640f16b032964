package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pable/go-rl-metrics/internal/model"
)

// Document is the four-section output of one analysis.
type Document struct {
	Metadata   map[string]any                      `json:"metadata"`
	PlayerData map[string][]model.PlayerMatchStats `json:"player_data"`
	TeamData   map[string]*model.TeamStats         `json:"team_data"`
	ExtraData  ExtraData                           `json:"extra_data"`
}

// ExtraData carries the derived match facts plus the enriched goals.
type ExtraData struct {
	RunID string `json:"Run_ID"`
	model.Extra
	Goals []model.GoalStats `json:"Goals"`
}

// UnknownTeamKey groups players whose team never resolved.
const UnknownTeamKey = "unknown"

// BuildDocument lays a report out in its output shape. Player and team
// sections are keyed by team name. Players without a team are listed under
// UnknownTeamKey when there are any.
func BuildDocument(rep *model.Report) *Document {
	doc := &Document{
		Metadata:   rep.Metadata,
		PlayerData: make(map[string][]model.PlayerMatchStats, len(model.Teams)),
		TeamData:   make(map[string]*model.TeamStats, len(model.Teams)),
		ExtraData: ExtraData{
			RunID: rep.RunID,
			Extra: rep.Extra,
			Goals: rep.Goals,
		},
	}
	for _, team := range model.Teams {
		players := rep.PlayersOn(team)
		if players == nil {
			players = []model.PlayerMatchStats{}
		}
		doc.PlayerData[team.String()] = players
		if ts, ok := rep.Teams[team]; ok {
			doc.TeamData[team.String()] = ts
		}
	}
	if unknown := rep.PlayersOn(model.TeamUnknown); len(unknown) > 0 {
		doc.PlayerData[UnknownTeamKey] = unknown
	}
	if doc.ExtraData.Goals == nil {
		doc.ExtraData.Goals = []model.GoalStats{}
	}
	return doc
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

// WriteJSON writes the document followed by a newline.
func (d *Document) WriteJSON(w io.Writer) error {
	b, err := d.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Summary extracts the list/show header of a report.
func Summary(rep *model.Report) model.ReplaySummary {
	return model.ReplaySummary{
		ReplayHash:   rep.ReplayHash,
		RunID:        rep.RunID,
		ReplayName:   metaString(rep.Metadata, "ReplayName"),
		MapName:      metaString(rep.Metadata, "MapName"),
		MatchDate:    metaString(rep.Metadata, "Date"),
		MatchType:    metaString(rep.Metadata, "MatchType"),
		BlueScore:    metaInt(rep.Metadata, "Team0Score"),
		OrangeScore:  metaInt(rep.Metadata, "Team1Score"),
		NumFrames:    metaInt(rep.Metadata, "NumFrames"),
		MatchSeconds: rep.Extra.MatchSeconds,
		Overtime:     rep.Extra.Overtime,
	}
}

// metaString renders a passthrough value; absent keys default to 0 upstream,
// which is shown as empty.
func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case int:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case float64:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// ParseDocument decodes a stored report document.
func ParseDocument(b []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &d, nil
}
