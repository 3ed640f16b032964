package entity

import (
	"encoding/json"
	"testing"
)

func attrs(kv ...string) Attrs {
	a := make(Attrs)
	for i := 0; i+1 < len(kv); i += 2 {
		a[kv[i]] = json.RawMessage(kv[i+1])
	}
	return a
}

func TestSpawnCreatesAndMerges(t *testing.T) {
	s := NewStore()
	e := s.Spawn(5, attrs(AttrClass, `"TAGame.Ball_TA"`), 0)
	if !e.Has(RoleBall) {
		t.Fatalf("expected ball role, got %s", e.Roles)
	}

	s.Spawn(5, attrs(AttrHitTeamNum, `{"Value":1}`), 3)
	got, ok := s.Get(5)
	if !ok {
		t.Fatal("entity 5 missing after second spawn")
	}
	if got.Attrs.Class() != "TAGame.Ball_TA" {
		t.Errorf("class lost on merge: %q", got.Attrs.Class())
	}
	if n, ok := got.Attrs.Int(AttrHitTeamNum); !ok || n != 1 {
		t.Errorf("HitTeamNum = %d, %v; want 1", n, ok)
	}
	if got.SpawnFrame != 0 || got.LastFrame != 3 {
		t.Errorf("frames = %d/%d, want 0/3", got.SpawnFrame, got.LastFrame)
	}
}

func TestUpdateIdenticalIsNoOp(t *testing.T) {
	s := NewStore()
	s.Spawn(1, attrs(AttrClass, `"TAGame.PRI_TA"`, AttrScore, `{"Type":"Int","Value":100}`), 0)
	before := s.Revision()

	// Same values, different whitespace.
	changed := s.Update(1, attrs(AttrScore, `{ "Type": "Int", "Value": 100 }`), 1)
	if changed {
		t.Error("identical update reported as a change")
	}
	if s.Revision() != before {
		t.Errorf("revision moved from %d to %d on a no-op update", before, s.Revision())
	}
	e, _ := s.Get(1)
	if e.LastFrame != 0 {
		t.Errorf("LastFrame = %d, want 0", e.LastFrame)
	}

	if !s.Update(1, attrs(AttrScore, `{"Type":"Int","Value":150}`), 2) {
		t.Error("real change not applied")
	}
	if n, _ := e.Attrs.Int(AttrScore); n != 150 {
		t.Errorf("score = %d, want 150", n)
	}
}

func TestUnknownIDsAreTolerated(t *testing.T) {
	s := NewStore()
	s.Spawn(7, attrs(AttrClass, `"TAGame.Car_TA"`), 0)
	if _, ok := s.Destroy(7); !ok {
		t.Fatal("destroy of live entity failed")
	}

	if s.Update(7, attrs(AttrBoost, `{"Value":10}`), 2) {
		t.Error("update of destroyed id should be a no-op")
	}
	if _, ok := s.Destroy(7); ok {
		t.Error("second destroy should report not found")
	}
	if _, ok := s.Get(7); ok {
		t.Error("destroyed entity was resurrected")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestRolesAreRederived(t *testing.T) {
	s := NewStore()
	e := s.Spawn(3, attrs(AttrClass, `"TAGame.Car_TA"`), 0)
	if !e.Has(RolePlayerUnit) || e.Has(RolePlayerIdentity) {
		t.Fatalf("car roles = %s", e.Roles)
	}
	s.Update(3, attrs(AttrPawnPRI, `{"Value":{"Int":9}}`), 1)
	if ref, ok := e.Attrs.Ref(AttrPawnPRI); !ok || ref != 9 {
		t.Errorf("PRI ref = %d, %v; want 9", ref, ok)
	}

	cam := s.Spawn(4, attrs(AttrClass, `"TAGame.CameraSettingsActor_TA"`), 0)
	if !cam.Has(RoleCamera) {
		t.Errorf("camera roles = %s", cam.Roles)
	}
	team := s.Spawn(8, attrs(AttrClass, `"TAGame.Team_Soccar_TA"`, AttrName, `"Archetypes.Teams.Team1"`), 0)
	if !team.Has(RoleTeamMarker) {
		t.Errorf("team roles = %s", team.Roles)
	}
	if got := s.WithRole(RolePlayerUnit); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("WithRole(unit) = %v", got)
	}
}

func TestValueDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`5`, 5, true},
		{`{"Type":"Int","Value":42}`, 42, true},
		{`"1"`, 1, true},
		{`true`, 1, true},
		{`{"Int":3}`, 0, false},
		{`[1,2]`, 0, false},
	}
	for _, tt := range tests {
		got, ok := Int(json.RawMessage(tt.raw))
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int(%s) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}

	strict := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`255`, 255, true},
		{`{"Type":"Byte","Value":0}`, 0, true},
		{`100.0`, 100, true},
		{`-3`, -3, true},
		{`255.9`, 0, false},
		{`"garbage"`, 0, false},
		{`"12"`, 0, false},
		{`true`, 0, false},
		{`{"x":1}`, 0, false},
		{`null`, 0, false},
	}
	for _, tt := range strict {
		got, ok := StrictInt(json.RawMessage(tt.raw))
		if got != tt.want || ok != tt.ok {
			t.Errorf("StrictInt(%s) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}

	if s, ok := String(json.RawMessage(`{"Value":"Octane"}`)); !ok || s != "Octane" {
		t.Errorf("String tagged = %q, %v", s, ok)
	}
	if s, ok := String(json.RawMessage(`76561198000000001`)); !ok || s != "76561198000000001" {
		t.Errorf("String number = %q, %v", s, ok)
	}
}
