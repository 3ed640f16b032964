package parser

import (
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/replay"
)

// ---- builders ----

func attrs(kv ...string) entity.Attrs {
	a := make(entity.Attrs)
	for i := 0; i+1 < len(kv); i += 2 {
		a[kv[i]] = []byte(kv[i+1])
	}
	return a
}

func str(s string) string { return fmt.Sprintf("%q", s) }
func tagged(v any) string { return fmt.Sprintf(`{"Type":"Int","Value":%v}`, v) }
func tagStr(s string) string { return fmt.Sprintf(`{"Type":"String","Value":%q}`, s) }
func actorRef(id int) string { return fmt.Sprintf(`{"Type":"ActiveActor","Value":{"Active":true,"Int":%d}}`, id) }
func rb(x, y, z float64) string {
	return fmt.Sprintf(`{"Type":"RigidBody","Value":{"Sleeping":false,"Position":[%g,%g,%g],"Rotation":[0.5,0,0]}}`, x, y, z)
}

type frameBuilder struct {
	f replay.Frame
}

func frame() *frameBuilder {
	return &frameBuilder{f: replay.Frame{
		Spawned: map[entity.ID]entity.Attrs{},
		Updated: map[entity.ID]entity.Attrs{},
	}}
}

func (b *frameBuilder) spawn(id int, a entity.Attrs) *frameBuilder {
	b.f.Spawned[entity.ID(id)] = a
	return b
}

func (b *frameBuilder) update(id int, a entity.Attrs) *frameBuilder {
	b.f.Updated[entity.ID(id)] = a
	return b
}

func (b *frameBuilder) destroy(ids ...int) *frameBuilder {
	for _, id := range ids {
		b.f.Destroyed = append(b.f.Destroyed, entity.ID(id))
	}
	return b
}

func doc(frames ...*frameBuilder) *replay.Document {
	d := &replay.Document{Metadata: map[string]replay.Property{}}
	for _, fb := range frames {
		d.Frames = append(d.Frames, fb.f)
	}
	return d
}

func pri(name string, team int) entity.Attrs {
	return attrs(
		entity.AttrClass, str(entity.ClassPRI),
		entity.AttrPlayerName, tagStr(name),
		entity.AttrPlayerTeam, actorRef(team),
		entity.AttrUniqueID, fmt.Sprintf(`{"Type":"UniqueId","Value":{"System":"Steam","Remote":{"Value":"id-%s"}}}`, name),
		entity.AttrScore, tagged(100),
	)
}

func car(owner int, x, y, z float64) entity.Attrs {
	return attrs(
		entity.AttrClass, str(entity.ClassCar),
		entity.AttrPawnPRI, actorRef(owner),
		entity.AttrRBState, rb(x, y, z),
	)
}

func team(suffix string) entity.Attrs {
	return attrs(entity.AttrClass, str("TAGame.Team_Soccar_TA"), entity.AttrName, str("Archetypes.Teams.Team"+suffix))
}

func ball(x, y, z float64) entity.Attrs {
	return attrs(entity.AttrClass, str("TAGame.Ball_TA"), entity.AttrRBState, rb(x, y, z))
}

func boostComponent(vehicle, level int) entity.Attrs {
	return attrs(
		entity.AttrClass, str("TAGame.CarComponent_Boost_TA"),
		entity.AttrVehicle, actorRef(vehicle),
		entity.AttrBoost, tagged(level),
	)
}

func levels(samples []model.ResourceSample) string {
	var parts []string
	for _, s := range samples {
		parts = append(parts, fmt.Sprintf("%d:%d", s.Frame, s.Level))
	}
	return strings.Join(parts, ",")
}

// ---- tests ----

func TestReduceResolvesPositions(t *testing.T) {
	d := doc(
		frame().
			spawn(10, team("0")).
			spawn(11, team("1")).
			spawn(1, pri("alice", 10)).
			spawn(2, car(1, 0, -500, 17)).
			spawn(3, ball(0, 0, 93)).
			spawn(4, attrs(entity.AttrClass, str("TAGame.GameEvent_Soccar_TA"), entity.AttrSeconds, tagged(300))),
		frame().
			update(2, attrs(entity.AttrRBState, rb(0, -400, 17))).
			update(3, attrs(entity.AttrRBState, rb(0, 10, 93), entity.AttrHitTeamNum, tagged(0))).
			update(4, attrs(entity.AttrSeconds, tagged(299))),
	)

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(raw.Positions) != 4 {
		t.Fatalf("positions = %d, want 4", len(raw.Positions))
	}
	var playerSamples, ballSamples int
	for _, p := range raw.Positions {
		switch p.Ref {
		case model.Ref(1):
			playerSamples++
		case model.BallRef:
			ballSamples++
		default:
			t.Errorf("unexpected ref %s", p.Ref)
		}
	}
	if playerSamples != 2 || ballSamples != 2 {
		t.Errorf("player/ball samples = %d/%d, want 2/2", playerSamples, ballSamples)
	}
	if last := raw.Positions[len(raw.Positions)-1]; last.Frame != 1 || last.Pos.Y != 10 {
		t.Errorf("last sample = %+v", last)
	}
	if raw.Positions[0].Yaw != 0.5 {
		t.Errorf("yaw = %v, want 0.5", raw.Positions[0].Yaw)
	}

	p, ok := raw.Players[1]
	if !ok {
		t.Fatal("player 1 missing")
	}
	if !p.Playing || p.Team != model.TeamBlue || p.Name != "alice" || p.UniqueID != "id-alice" {
		t.Errorf("player = %+v", p)
	}
	if len(raw.Clock) != 2 || raw.Clock[1].SecondsRemaining != 299 {
		t.Errorf("clock = %+v", raw.Clock)
	}
	if len(raw.Possession) != 1 || raw.Possession[0].Team != model.TeamBlue {
		t.Errorf("possession = %+v", raw.Possession)
	}
}

func TestMetadataTeamWinsOverMarker(t *testing.T) {
	d := doc(
		frame().
			spawn(10, team("0")).
			spawn(1, pri("bob", 10)).
			spawn(2, car(1, 0, 0, 17)),
	)
	d.Metadata["PlayerStats"] = replay.Property{Value: []byte(`[{"Name":{"Value":"bob"},"Team":{"Value":1}}]`)}

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := raw.Players[1].Team; got != model.TeamOrange {
		t.Errorf("team = %s, want orange", got)
	}
}

func TestBoostBufferedUntilBindingResolves(t *testing.T) {
	d := doc(
		frame().
			spawn(1, pri("alice", 10)).
			spawn(5, boostComponent(2, 100)),
		frame().
			update(5, attrs(entity.AttrBoost, tagged(90))),
		frame().
			spawn(2, car(1, 0, 0, 17)),
		frame().
			update(5, attrs(entity.AttrBoost, tagged(80))),
	)

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := levels(raw.Boosts[1]); got != "0:100,1:90,3:80" {
		t.Errorf("boost series = %s, want 0:100,1:90,3:80", got)
	}
	for _, w := range raw.Warnings {
		if w.Kind == model.WarnUnresolvedBinding {
			t.Errorf("unexpected warning %s", w)
		}
	}
}

func TestUnresolvedBoostIsDroppedWithWarning(t *testing.T) {
	d := doc(
		frame().spawn(5, boostComponent(2, 100)),
		frame().update(5, attrs(entity.AttrBoost, tagged(50))),
	)

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(raw.Boosts) != 0 {
		t.Errorf("boosts = %v, want none", raw.Boosts)
	}
	var found bool
	for _, w := range raw.Warnings {
		if w.Kind == model.WarnUnresolvedBinding {
			found = true
			if w.Frame != 1 {
				t.Errorf("warning frame = %d, want 1", w.Frame)
			}
		}
	}
	if !found {
		t.Errorf("no unresolved_binding warning in %v", raw.Warnings)
	}
}

func TestBoostOutOfRangeAborts(t *testing.T) {
	d := doc(
		frame().spawn(1, pri("alice", 10)).spawn(2, car(1, 0, 0, 17)),
		frame().spawn(5, boostComponent(2, 256)),
	)

	raw, err := Reduce(d)
	if raw != nil {
		t.Error("partial result returned on integrity error")
	}
	var die *DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("err = %v, want DataIntegrityError", err)
	}
	if die.Level != 256 || die.Frame != 1 || die.Entity != 5 {
		t.Errorf("error = %+v", die)
	}
}

func TestMalformedBoostAborts(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"fraction", `{"Type":"Byte","Value":255.9}`},
		{"string", `{"Type":"Byte","Value":"garbage"}`},
		{"object", `{"Type":"Byte","Value":{"x":1}}`},
		{"negative", tagged(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc(
				frame().spawn(1, pri("alice", 10)).spawn(2, car(1, 0, 0, 17)),
				frame().spawn(5, attrs(
					entity.AttrClass, str("TAGame.CarComponent_Boost_TA"),
					entity.AttrVehicle, actorRef(2),
					entity.AttrBoost, tt.value,
				)),
			)

			raw, err := Reduce(d)
			if raw != nil {
				t.Error("partial result returned on integrity error")
			}
			var die *DataIntegrityError
			if !errors.As(err, &die) {
				t.Fatalf("err = %v, want DataIntegrityError", err)
			}
			if die.Frame != 1 || die.Entity != 5 {
				t.Errorf("error = %+v", die)
			}
		})
	}
}

func TestBoostKeptWhenCarDestroyedSameFrame(t *testing.T) {
	d := doc(
		frame().
			spawn(1, pri("alice", 10)).
			spawn(2, car(1, 0, 0, 17)).
			spawn(5, boostComponent(2, 100)),
		frame().
			update(5, attrs(entity.AttrBoost, tagged(40))).
			destroy(2),
	)

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := levels(raw.Boosts[1]); got != "0:100,1:40" {
		t.Errorf("boost series = %s, want 0:100,1:40", got)
	}
	for _, w := range raw.Warnings {
		if w.Kind == model.WarnUnresolvedBinding {
			t.Errorf("unexpected warning %s", w)
		}
	}
}

func TestLeaveFrameAndRebinding(t *testing.T) {
	d := doc(
		frame().spawn(1, pri("alice", 10)).spawn(2, car(1, 0, 0, 17)),
		frame(),
		frame().destroy(2),
		frame(),
		frame().spawn(6, car(1, 0, 0, 17)),
	)

	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := raw.Players[1].LeaveFrame; got != -1 {
		t.Errorf("after rebinding LeaveFrame = %d, want -1", got)
	}

	d = doc(
		frame().spawn(1, pri("alice", 10)).spawn(2, car(1, 0, 0, 17)),
		frame().destroy(2),
	)
	raw, err = Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := raw.Players[1].LeaveFrame; got != 1 {
		t.Errorf("LeaveFrame = %d, want 1", got)
	}
}

func TestCarSwapKeepsPlayerPresent(t *testing.T) {
	d := doc(
		frame().spawn(1, pri("alice", 10)).spawn(2, car(1, 0, 0, 17)),
		frame().spawn(6, car(1, 0, 0, 17)).destroy(2),
	)
	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := raw.Players[1].LeaveFrame; got != -1 {
		t.Errorf("LeaveFrame = %d, want -1 while a unit is still bound", got)
	}
}

func TestUnknownIDsAndSpectators(t *testing.T) {
	d := doc(
		frame().spawn(1, pri("spectator", 10)),
		frame().update(99, attrs(entity.AttrRBState, rb(1, 2, 3))).destroy(98),
	)
	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(raw.Positions) != 0 {
		t.Errorf("positions = %v, want none", raw.Positions)
	}
	if len(raw.PlayingPlayers()) != 0 {
		t.Errorf("spectator counted as playing")
	}
}

func TestSecondBallWarns(t *testing.T) {
	d := doc(
		frame().spawn(3, ball(0, 0, 93)),
		frame().spawn(7, ball(0, 100, 93)),
		frame().update(7, attrs(entity.AttrRBState, rb(0, 200, 93))),
	)
	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	var dup int
	for _, w := range raw.Warnings {
		if w.Kind == model.WarnDuplicateBall {
			dup++
		}
	}
	if dup != 1 {
		t.Errorf("duplicate ball warnings = %d, want 1", dup)
	}
	last := raw.Positions[len(raw.Positions)-1]
	if !last.Ref.IsBall() || last.Pos.Y != 200 {
		t.Errorf("designated ball sample = %+v", last)
	}
}

func TestCameraAndExtras(t *testing.T) {
	d := doc(
		frame().
			spawn(1, pri("alice", 10)).
			spawn(2, car(1, 0, 0, 17)).
			spawn(8, attrs(
				entity.AttrClass, str(entity.ClassCameraSettings),
				entity.AttrCameraPRI, actorRef(1),
				entity.AttrCameraProfile, `{"Type":"CamSettings","Value":{"FOV":110,"Height":100}}`,
			)).
			spawn(9, attrs(
				entity.AttrClass, str("TAGame.GRI_TA"),
				entity.AttrServerName, tagStr("EU123"),
				entity.AttrPlaylist, tagged(13),
			)),
	)
	raw, err := Reduce(d)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if cam := string(raw.Players[1].Camera); !strings.Contains(cam, `"FOV":110`) {
		t.Errorf("camera = %s", cam)
	}
	if raw.ServerName != "EU123" {
		t.Errorf("server = %q", raw.ServerName)
	}
	if raw.Playlist == nil || *raw.Playlist != 13 {
		t.Errorf("playlist = %v", raw.Playlist)
	}
}

func TestParseReplayGzip(t *testing.T) {
	body := `{
	  "Metadata": {"MapName": {"Value": "Park_P"}},
	  "Goals": [],
	  "Frames": [{"Spawned": {"3": {"Class": "TAGame.Ball_TA",
	     "TAGame.RBActor_TA:ReplicatedRBState": {"Value": {"Position": [0, 0, 93], "Rotation": [0, 0, 0]}}}}}]
	}`
	path := filepath.Join(t.TempDir(), "match.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	gz.Close()
	f.Close()

	raw, err := ParseReplay(path)
	if err != nil {
		t.Fatalf("ParseReplay: %v", err)
	}
	if len(raw.ReplayHash) != 64 {
		t.Errorf("hash = %q", raw.ReplayHash)
	}
	if raw.Metadata["MapName"] != "Park_P" {
		t.Errorf("MapName = %v", raw.Metadata["MapName"])
	}
	if len(raw.Positions) != 1 || !raw.Positions[0].Ref.IsBall() {
		t.Errorf("positions = %+v", raw.Positions)
	}
}

func TestParseReplayStructuralError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"Metadata": {}, "Goals": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseReplay(path)
	var se *replay.StructuralError
	if !errors.As(err, &se) || se.Section != replay.SectionFrames {
		t.Errorf("err = %v, want StructuralError for Frames", err)
	}
}
