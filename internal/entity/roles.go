package entity

import "strings"

// Roles is a set of capability tags derived from an entity's attributes.
type Roles uint8

const (
	RolePlayerIdentity Roles = 1 << iota
	RolePlayerUnit
	RoleBall
	RoleTeamMarker
	RoleCamera
)

// Has reports whether every tag in r2 is set.
func (r Roles) Has(r2 Roles) bool { return r&r2 == r2 && r2 != 0 }

func (r Roles) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	for _, t := range []struct {
		role Roles
		name string
	}{
		{RolePlayerIdentity, "player_identity"},
		{RolePlayerUnit, "player_unit"},
		{RoleBall, "ball"},
		{RoleTeamMarker, "team_marker"},
		{RoleCamera, "camera"},
	} {
		if r&t.role != 0 {
			parts = append(parts, t.name)
		}
	}
	return strings.Join(parts, "|")
}

// DeriveRoles scans the merged attributes and returns every tag they imply.
// Tags are recomputed from scratch so a stale tag never survives a merge.
func DeriveRoles(a Attrs) Roles {
	var r Roles
	class := a.Class()
	if class == ClassPRI || a.Has(AttrUniqueID) {
		r |= RolePlayerIdentity
	}
	if class == ClassCar || a.Has(AttrPawnPRI) {
		r |= RolePlayerUnit
	}
	if strings.HasPrefix(class, ClassBallPrefix) {
		r |= RoleBall
	}
	if strings.HasPrefix(class, ClassTeamPrefix) {
		r |= RoleTeamMarker
	}
	if class == ClassCameraSettings || a.Has(AttrCameraProfile) {
		r |= RoleCamera
	}
	return r
}
