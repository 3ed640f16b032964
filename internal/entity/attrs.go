// Package entity holds the merged attribute state of every live replay entity.
package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Attribute names as they appear in the decoded replay.
const (
	AttrClass = "Class"
	AttrName  = "Name"

	AttrRBState    = "TAGame.RBActor_TA:ReplicatedRBState"
	AttrBoost      = "TAGame.CarComponent_Boost_TA:ReplicatedBoostAmount"
	AttrVehicle    = "TAGame.CarComponent_TA:Vehicle"
	AttrPawnPRI    = "Engine.Pawn:PlayerReplicationInfo"
	AttrSeconds    = "TAGame.GameEvent_Soccar_TA:SecondsRemaining"
	AttrHitTeamNum = "TAGame.Ball_TA:HitTeamNum"

	AttrPlayerName = "Engine.PlayerReplicationInfo:PlayerName"
	AttrUniqueID   = "Engine.PlayerReplicationInfo:UniqueId"
	AttrPlayerTeam = "Engine.PlayerReplicationInfo:Team"
	AttrBot        = "Engine.PlayerReplicationInfo:bBot"
	AttrScore      = "TAGame.PRI_TA:MatchScore"
	AttrGoals      = "TAGame.PRI_TA:MatchGoals"
	AttrShots      = "TAGame.PRI_TA:MatchShots"
	AttrAssists    = "TAGame.PRI_TA:MatchAssists"
	AttrSaves      = "TAGame.PRI_TA:MatchSaves"
	AttrLoadouts   = "TAGame.PRI_TA:ClientLoadouts"

	AttrCameraProfile = "TAGame.CameraSettingsActor_TA:ProfileSettings"
	AttrCameraPRI     = "TAGame.CameraSettingsActor_TA:PRI"

	AttrServerName  = "Engine.GameReplicationInfo:ServerName"
	AttrMaxTeamSize = "TAGame.GameEvent_Team_TA:MaxTeamSize"
	AttrPlaylist    = "ProjectX.GRI_X:ReplicatedGamePlaylist"
)

// Entity classes.
const (
	ClassPRI            = "TAGame.PRI_TA"
	ClassCar            = "TAGame.Car_TA"
	ClassBallPrefix     = "TAGame.Ball_"
	ClassTeamPrefix     = "TAGame.Team_"
	ClassCameraSettings = "TAGame.CameraSettingsActor_TA"
)

// Attrs maps an attribute name to its raw value. Apart from Class and Name,
// values are tagged: {"Type": ..., "Value": ...}.
type Attrs map[string]json.RawMessage

// Has reports whether the attribute is present.
func (a Attrs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Class returns the entity class, or "" if unknown.
func (a Attrs) Class() string {
	s, _ := String(a[AttrClass])
	return s
}

// Value returns the inner Value of a tagged attribute.
func (a Attrs) Value(key string) (json.RawMessage, bool) {
	raw, ok := a[key]
	if !ok {
		return nil, false
	}
	return Untag(raw), true
}

// Int returns a tagged integer attribute.
func (a Attrs) Int(key string) (int, bool) {
	v, ok := a.Value(key)
	if !ok {
		return 0, false
	}
	return Int(v)
}

// Str returns a tagged string attribute.
func (a Attrs) Str(key string) (string, bool) {
	v, ok := a.Value(key)
	if !ok {
		return "", false
	}
	return String(v)
}

// Bool returns a tagged boolean attribute.
func (a Attrs) Bool(key string) (bool, bool) {
	v, ok := a.Value(key)
	if !ok {
		return false, false
	}
	return Bool(v)
}

// Ref returns the entity id referenced by a tagged actor attribute
// ({"Value": {"Int": id}}).
func (a Attrs) Ref(key string) (ID, bool) {
	v, ok := a.Value(key)
	if !ok {
		return 0, false
	}
	var ref struct {
		Int *json.RawMessage `json:"Int"`
	}
	if err := json.Unmarshal(v, &ref); err != nil || ref.Int == nil {
		return 0, false
	}
	n, ok := Int(*ref.Int)
	return ID(n), ok
}

// Path walks nested object members, unwrapping tagged Values at every step.
func Path(raw json.RawMessage, keys ...string) (json.RawMessage, bool) {
	cur := Untag(raw)
	for _, k := range keys {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[k]
		if !ok {
			return nil, false
		}
		cur = Untag(next)
	}
	return cur, cur != nil
}

// Equal reports whether two raw attribute values are the same JSON.
func Equal(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// Untag returns the Value member of a tagged value, or raw itself when it is
// not an object carrying Value.
func Untag(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var tagged struct {
		Value json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(trimmed, &tagged); err != nil || tagged.Value == nil {
		return raw
	}
	return tagged.Value
}

// Int decodes a JSON number, a numeric string, or a tagged number.
func Int(raw json.RawMessage) (int, bool) {
	raw = Untag(raw)
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// StrictInt decodes a JSON number, or a tagged one, that is a whole number.
// Strings, booleans, objects and fractional values are rejected.
func StrictInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(Untag(raw))
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// String decodes a JSON string or a tagged string. Numbers are formatted.
func String(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	raw = Untag(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// Bool decodes a JSON boolean, 0/1, or a tagged boolean.
func Bool(raw json.RawMessage) (bool, bool) {
	raw = Untag(raw)
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	n, ok := Int(raw)
	return n != 0, ok
}
