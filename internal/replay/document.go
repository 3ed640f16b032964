// Package replay decodes the mutation-record document produced by an upstream
// replay decoder (Octane-style JSON).
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/model"
)

// Top-level sections.
const (
	SectionMetadata = "Metadata"
	SectionGoals    = "Goals"
	SectionFrames   = "Frames"
)

// MetadataKeys is the fixed list of metadata values passed through to the report.
var MetadataKeys = []string{
	"MaxChannels", "Team0Score", "Team1Score", "PlayerName", "KeyframeDelay",
	"MaxReplaySizeMB", "NumFrames", "MatchType", "MapName", "ReplayName",
	"PrimaryPlayerTeam", "Id", "TeamSize", "RecordFPS", "Date",
}

// StructuralError reports a missing or malformed top-level section.
type StructuralError struct {
	Section string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("replay: malformed %s section: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("replay: missing %s section", e.Section)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Property is a tagged metadata value.
type Property struct {
	Type  string
	Value json.RawMessage
}

// GoalRecord is one entry of the goals section.
type GoalRecord struct {
	Frame      int
	PlayerName string
	PlayerTeam int
}

// Frame is one tick's mutation record.
type Frame struct {
	Time      float64                     `json:"Time"`
	Delta     float64                     `json:"Delta"`
	Spawned   map[entity.ID]entity.Attrs `json:"Spawned"`
	Updated   map[entity.ID]entity.Attrs `json:"Updated"`
	Destroyed IDSet                       `json:"Destroyed"`
}

// IDSet is the set of ids destroyed in a frame. The decoder accepts either an
// object keyed by id or an array of ids.
type IDSet []entity.ID

func (s *IDSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	var ids []entity.ID
	switch data[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k := range m {
			n, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("destroyed id %q: %w", k, err)
			}
			ids = append(ids, entity.ID(n))
		}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		for _, r := range raw {
			n, ok := entity.Int(r)
			if !ok {
				return fmt.Errorf("destroyed id %s is not an integer", r)
			}
			ids = append(ids, entity.ID(n))
		}
	default:
		return fmt.Errorf("destroyed must be an object or array")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	*s = ids
	return nil
}

// Document is a structurally valid replay.
type Document struct {
	Metadata map[string]Property
	Goals    []GoalRecord
	Frames   []Frame
}

// Decode reads and validates a document. A missing section yields a
// *StructuralError; nothing is partially returned.
func Decode(r io.Reader) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}

	metaRaw, ok := top[SectionMetadata]
	if !ok || isNull(metaRaw) {
		return nil, &StructuralError{Section: SectionMetadata}
	}
	var metaMembers map[string]json.RawMessage
	if err := json.Unmarshal(metaRaw, &metaMembers); err != nil {
		return nil, &StructuralError{Section: SectionMetadata, Err: err}
	}
	doc := &Document{Metadata: make(map[string]Property, len(metaMembers))}
	for k, v := range metaMembers {
		doc.Metadata[k] = toProperty(v)
	}

	// Goals live at the top level or, in the Octane layout, under Metadata.
	goalsRaw, ok := top[SectionGoals]
	if !ok || isNull(goalsRaw) {
		p, inMeta := doc.Metadata[SectionGoals]
		if !inMeta {
			return nil, &StructuralError{Section: SectionGoals}
		}
		goalsRaw = p.Value
	}
	goals, err := decodeGoals(goalsRaw)
	if err != nil {
		return nil, &StructuralError{Section: SectionGoals, Err: err}
	}
	doc.Goals = goals

	framesRaw, ok := top[SectionFrames]
	if !ok || isNull(framesRaw) {
		return nil, &StructuralError{Section: SectionFrames}
	}
	if err := json.Unmarshal(framesRaw, &doc.Frames); err != nil {
		return nil, &StructuralError{Section: SectionFrames, Err: err}
	}
	return doc, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func toProperty(raw json.RawMessage) Property {
	var p struct {
		Type  string          `json:"Type"`
		Value json.RawMessage `json:"Value"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &p) == nil && p.Value != nil {
		return Property{Type: p.Type, Value: p.Value}
	}
	return Property{Value: raw}
}

func decodeGoals(raw json.RawMessage) ([]GoalRecord, error) {
	if isNull(raw) {
		return nil, nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	goals := make([]GoalRecord, 0, len(entries))
	for i, e := range entries {
		frame, ok := entity.Int(e["frame"])
		if !ok {
			return nil, fmt.Errorf("goal %d: missing frame", i)
		}
		name, _ := entity.String(e["PlayerName"])
		team, _ := entity.Int(e["PlayerTeam"])
		goals = append(goals, GoalRecord{Frame: frame, PlayerName: name, PlayerTeam: team})
	}
	return goals, nil
}

// MetaInt returns an integer metadata value, 0 when absent.
func (d *Document) MetaInt(key string) int {
	n, _ := entity.Int(d.Metadata[key].Value)
	return n
}

// MetaString returns a string metadata value, "" when absent.
func (d *Document) MetaString(key string) string {
	s, _ := entity.String(d.Metadata[key].Value)
	return s
}

// MetadataPassthrough returns the fixed metadata key list; absent keys are 0.
func (d *Document) MetadataPassthrough() map[string]any {
	out := make(map[string]any, len(MetadataKeys))
	for _, k := range MetadataKeys {
		p, ok := d.Metadata[k]
		if !ok || p.Value == nil {
			out[k] = 0
			continue
		}
		var v any
		if err := json.Unmarshal(p.Value, &v); err != nil || v == nil {
			out[k] = 0
			continue
		}
		out[k] = v
	}
	return out
}

// NumFrames prefers the metadata value and falls back to the frame count.
func (d *Document) NumFrames() int {
	if n := d.MetaInt("NumFrames"); n > 0 {
		return n
	}
	return len(d.Frames)
}

// GoalEvents converts the goals section to model goals.
func (d *Document) GoalEvents() []model.Goal {
	out := make([]model.Goal, 0, len(d.Goals))
	for _, g := range d.Goals {
		out = append(out, model.Goal{
			Frame:      g.Frame,
			ScorerName: g.PlayerName,
			ScorerTeam: model.TeamFromNum(g.PlayerTeam),
		})
	}
	return out
}

// PlayerStats decodes Metadata.PlayerStats. Entries without a name are skipped.
func (d *Document) PlayerStats() []model.MetaPlayer {
	p, ok := d.Metadata["PlayerStats"]
	if !ok {
		return nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(p.Value, &entries); err != nil {
		return nil
	}
	var out []model.MetaPlayer
	for _, e := range entries {
		name, _ := entity.String(e["Name"])
		if name == "" {
			continue
		}
		mp := model.MetaPlayer{Name: name, Team: model.TeamUnknown}
		if team, ok := entity.Int(e["Team"]); ok {
			mp.Team = model.TeamFromNum(team)
		}
		mp.Score, _ = entity.Int(e["Score"])
		mp.Goals, _ = entity.Int(e["Goals"])
		mp.Assists, _ = entity.Int(e["Assists"])
		mp.Saves, _ = entity.Int(e["Saves"])
		mp.Shots, _ = entity.Int(e["Shots"])
		mp.OnlineID, _ = entity.String(e["OnlineID"])
		mp.Bot, _ = entity.Bool(e["bBot"])
		out = append(out, mp)
	}
	return out
}
