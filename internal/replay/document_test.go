package replay

import (
	"errors"
	"strings"
	"testing"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/model"
)

const minimalDoc = `{
  "Metadata": {
    "MapName": {"Type": "NameProperty", "Value": "Stadium_P"},
    "Team0Score": {"Type": "IntProperty", "Value": 2},
    "PlayerStats": {"Type": "ArrayProperty", "Value": [
      {"Name": {"Value": "alice"}, "Team": {"Value": 0}, "Score": {"Value": 420}, "Goals": {"Value": 2}, "bBot": {"Value": false}},
      {"Name": {"Value": "bob"}, "Team": {"Value": 1}, "Score": {"Value": 150}, "OnlineID": {"Value": "7656"}}
    ]}
  },
  "Goals": [
    {"frame": {"Value": 120}, "PlayerName": {"Value": "alice"}, "PlayerTeam": {"Value": 0}}
  ],
  "Frames": [
    {"Time": 0.5, "Spawned": {"3": {"Class": "TAGame.Ball_TA"}}},
    {"Updated": {"3": {"TAGame.Ball_TA:HitTeamNum": {"Type": "Byte", "Value": 1}}}},
    {"Destroyed": ["3"]}
  ]
}`

func TestDecodeMinimal(t *testing.T) {
	doc, err := Decode(strings.NewReader(minimalDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(doc.Frames))
	}
	if got := doc.Frames[0].Spawned[3].Class(); got != "TAGame.Ball_TA" {
		t.Errorf("spawned class = %q", got)
	}
	if n, ok := doc.Frames[1].Updated[3].Int(entity.AttrHitTeamNum); !ok || n != 1 {
		t.Errorf("HitTeamNum = %d, %v", n, ok)
	}
	if len(doc.Frames[2].Destroyed) != 1 || doc.Frames[2].Destroyed[0] != 3 {
		t.Errorf("destroyed = %v", doc.Frames[2].Destroyed)
	}

	goals := doc.GoalEvents()
	if len(goals) != 1 || goals[0].Frame != 120 || goals[0].ScorerTeam != model.TeamBlue {
		t.Errorf("goals = %+v", goals)
	}

	players := doc.PlayerStats()
	if len(players) != 2 {
		t.Fatalf("player stats = %d, want 2", len(players))
	}
	if players[1].Team != model.TeamOrange || players[1].OnlineID != "7656" {
		t.Errorf("bob = %+v", players[1])
	}
	if players[0].Score != 420 || players[0].Goals != 2 {
		t.Errorf("alice = %+v", players[0])
	}
}

func TestMetadataPassthroughDefaultsToZero(t *testing.T) {
	doc, err := Decode(strings.NewReader(minimalDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	meta := doc.MetadataPassthrough()
	if len(meta) != len(MetadataKeys) {
		t.Errorf("passthrough has %d keys, want %d", len(meta), len(MetadataKeys))
	}
	if meta["MapName"] != "Stadium_P" {
		t.Errorf("MapName = %v", meta["MapName"])
	}
	if meta["Team0Score"] != float64(2) {
		t.Errorf("Team0Score = %v", meta["Team0Score"])
	}
	if meta["Team1Score"] != 0 {
		t.Errorf("absent Team1Score = %v, want 0", meta["Team1Score"])
	}
	if doc.NumFrames() != 3 {
		t.Errorf("NumFrames = %d, want frame count 3", doc.NumFrames())
	}
}

func TestDecodeGoalsUnderMetadata(t *testing.T) {
	in := `{
	  "Metadata": {"Goals": {"Type": "ArrayProperty", "Value": [
	    {"frame": {"Value": 10}, "PlayerName": {"Value": "x"}, "PlayerTeam": {"Value": "1"}}
	  ]}},
	  "Frames": []
	}`
	doc, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Goals) != 1 || doc.Goals[0].PlayerTeam != 1 {
		t.Errorf("goals = %+v", doc.Goals)
	}
}

func TestDecodeStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		section string
	}{
		{"no metadata", `{"Goals": [], "Frames": []}`, SectionMetadata},
		{"no goals", `{"Metadata": {}, "Frames": []}`, SectionGoals},
		{"no frames", `{"Metadata": {}, "Goals": []}`, SectionFrames},
		{"null frames", `{"Metadata": {}, "Goals": [], "Frames": null}`, SectionFrames},
		{"frames not a list", `{"Metadata": {}, "Goals": [], "Frames": 4}`, SectionFrames},
		{"goal without frame", `{"Metadata": {}, "Goals": [{"PlayerName": {"Value": "a"}}], "Frames": []}`, SectionGoals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want StructuralError", err)
			}
			if se.Section != tt.section {
				t.Errorf("section = %q, want %q", se.Section, tt.section)
			}
		})
	}
}

func TestDestroyedObjectForm(t *testing.T) {
	in := `{"Metadata": {}, "Goals": [], "Frames": [{"Destroyed": {"9": null, "4": null}}]}`
	doc, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := doc.Frames[0].Destroyed
	if len(got) != 2 || got[0] != 4 || got[1] != 9 {
		t.Errorf("destroyed = %v, want [4 9]", got)
	}
}
