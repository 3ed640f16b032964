package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/metrics"
	"github.com/pable/go-rl-metrics/internal/model"
)

// Extractor turns each frame's mutations into telemetry samples appended to
// a RawMatch. It only reads the entity store.
type Extractor struct {
	in      *Ingestor
	raw     *model.RawMatch
	pending *pendingQueue

	metaTeams map[string]model.Team        // metadata PlayerStats, by name
	markers   map[entity.ID]model.Team      // team marker entity -> team
	teamRefs  map[entity.ID]entity.ID       // identity -> first observed team marker
	cameras   map[entity.ID]json.RawMessage // identity -> camera profile

	log     *slog.Logger
	metrics *metrics.Manager
}

// NewExtractor returns an extractor appending to raw. raw.MetaPlayers should
// already be populated; it is used to resolve teams by name.
func NewExtractor(in *Ingestor, raw *model.RawMatch, log *slog.Logger, m *metrics.Manager) *Extractor {
	if raw.Players == nil {
		raw.Players = make(map[int]*model.PlayerInfo)
	}
	if raw.Boosts == nil {
		raw.Boosts = make(map[int][]model.ResourceSample)
	}
	x := &Extractor{
		in:        in,
		raw:       raw,
		pending:   newPendingQueue(),
		metaTeams: make(map[string]model.Team),
		markers:   make(map[entity.ID]model.Team),
		teamRefs:  make(map[entity.ID]entity.ID),
		cameras:   make(map[entity.ID]json.RawMessage),
		log:       log,
		metrics:   m,
	}
	for _, mp := range raw.MetaPlayers {
		if mp.Team != model.TeamUnknown {
			x.metaTeams[mp.Name] = mp.Team
		}
	}
	return x
}

// Observe extracts the samples of one frame. The only error it returns is a
// *DataIntegrityError.
func (x *Extractor) Observe(d *FrameDelta) error {
	x.raw.Warnings = append(x.raw.Warnings, d.Warnings...)
	for _, w := range d.Warnings {
		x.metrics.RecordWarning(string(w.Kind))
	}

	for _, b := range d.Bound {
		p := x.player(b.Identity, d.Frame)
		p.Playing = true
		p.LeaveFrame = -1
	}
	for _, b := range d.Unbound {
		if x.in.HasUnit(b.Identity) {
			continue
		}
		if p, ok := x.raw.Players[int(b.Identity)]; ok {
			p.LeaveFrame = d.Frame
		}
	}
	retry := len(d.Bound) > 0

	for _, id := range d.ObservedIDs() {
		attrs := d.Observed[id]
		e := d.Entities[id]

		if e.Has(entity.RoleTeamMarker) {
			x.noteTeamMarker(e)
		}
		if e.Has(entity.RolePlayerIdentity) {
			x.refreshPlayer(e, d.Frame)
		}
		if e.Has(entity.RoleCamera) {
			x.noteCamera(e)
		}

		if attrs.Has(entity.AttrRBState) {
			x.position(d, e, attrs)
		}
		if attrs.Has(entity.AttrBoost) {
			if err := x.boost(d, e, attrs); err != nil {
				return err
			}
		}
		if x.pending.Has(id) {
			if v, ok := e.Attrs.Ref(entity.AttrVehicle); ok {
				x.pending.setVehicle(id, v)
				retry = true
			}
		}

		if secs, ok := attrs.Int(entity.AttrSeconds); ok {
			x.raw.Clock = append(x.raw.Clock, model.ClockSample{Frame: d.Frame, SecondsRemaining: secs})
			x.metrics.AddSamples(metrics.KindClock, 1)
		}
		if n, ok := attrs.Int(entity.AttrHitTeamNum); ok {
			if team := model.TeamFromNum(n); team != model.TeamUnknown {
				x.raw.Possession = append(x.raw.Possession, model.PossessionSample{Frame: d.Frame, Team: team})
				x.metrics.AddSamples(metrics.KindPossession, 1)
			}
		}
		if s, ok := attrs.Str(entity.AttrServerName); ok {
			x.raw.ServerName = s
		}
		if n, ok := attrs.Int(entity.AttrMaxTeamSize); ok {
			x.raw.MaxTeamSize = &n
		}
		if n, ok := attrs.Int(entity.AttrPlaylist); ok {
			x.raw.Playlist = &n
		}
	}

	for _, e := range d.Destroyed {
		if !e.Has(entity.RolePlayerIdentity) {
			continue
		}
		if p, ok := x.raw.Players[int(e.ID)]; ok {
			p.LeaveFrame = d.Frame
		}
	}

	if retry && x.pending.Len() > 0 {
		x.drain()
	}
	return nil
}

// Finish drops samples that never resolved, resolves teams and cameras, and
// returns the completed RawMatch.
func (x *Extractor) Finish() *model.RawMatch {
	for _, e := range x.pending.remaining() {
		last := e.samples[len(e.samples)-1].Frame
		w := model.Warning{
			Kind:  model.WarnUnresolvedBinding,
			Frame: last,
			Message: fmt.Sprintf("dropped %d boost samples of component %d: owning player never resolved",
				len(e.samples), e.component),
		}
		x.raw.Warnings = append(x.raw.Warnings, w)
		x.metrics.RecordWarning(string(w.Kind))
		x.log.Warn("unresolved boost component", "component", e.component, "samples", len(e.samples))
	}

	for id, p := range x.raw.Players {
		eid := entity.ID(id)
		if p.Team == model.TeamUnknown {
			p.Team = x.resolveTeam(eid, p.Name)
		}
		if cam, ok := x.cameras[eid]; ok {
			p.Camera = cam
		}
		if p.UniqueID == "" {
			p.UniqueID = x.fallbackID(p)
		}
	}
	for _, p := range x.raw.PlayingPlayers() {
		if p.Team != model.TeamUnknown {
			continue
		}
		w := model.Warning{
			Kind:    model.WarnMissingTeam,
			Frame:   p.JoinFrame,
			Message: fmt.Sprintf("player %q has no team assignment", p.Name),
		}
		x.raw.Warnings = append(x.raw.Warnings, w)
		x.metrics.RecordWarning(string(w.Kind))
	}
	return x.raw
}

func (x *Extractor) player(id entity.ID, frame int) *model.PlayerInfo {
	p, ok := x.raw.Players[int(id)]
	if !ok {
		p = &model.PlayerInfo{EntityID: int(id), JoinFrame: frame, LeaveFrame: -1}
		x.raw.Players[int(id)] = p
	}
	return p
}

func (x *Extractor) refreshPlayer(e *entity.Entity, frame int) {
	p := x.player(e.ID, frame)
	a := e.Attrs
	if s, ok := a.Str(entity.AttrPlayerName); ok {
		p.Name = s
	}
	if raw, ok := a[entity.AttrUniqueID]; ok {
		if v, ok := entity.Path(raw, "Remote"); ok {
			if s, ok := entity.String(v); ok && s != "" && s != "0" {
				p.UniqueID = s
			}
		}
	}
	if b, ok := a.Bool(entity.AttrBot); ok {
		p.Bot = b
	}
	if n, ok := a.Int(entity.AttrScore); ok {
		p.Score = n
	}
	if n, ok := a.Int(entity.AttrGoals); ok {
		p.Goals = n
	}
	if n, ok := a.Int(entity.AttrShots); ok {
		p.Shots = n
	}
	if n, ok := a.Int(entity.AttrAssists); ok {
		p.Assists = n
	}
	if n, ok := a.Int(entity.AttrSaves); ok {
		p.Saves = n
	}
	if raw, ok := a[entity.AttrLoadouts]; ok {
		if v, ok := entity.Path(raw, "Loadout1", "Body", "Name"); ok {
			p.Car, _ = entity.String(v)
		}
	}
	if _, seen := x.teamRefs[e.ID]; !seen {
		if ref, ok := a.Ref(entity.AttrPlayerTeam); ok && ref >= 0 {
			x.teamRefs[e.ID] = ref
		}
	}
}

// noteTeamMarker maps a team entity to a side from its archetype name, which
// ends in 0 (blue) or 1 (orange).
func (x *Extractor) noteTeamMarker(e *entity.Entity) {
	if _, ok := x.markers[e.ID]; ok {
		return
	}
	name, _ := entity.String(e.Attrs[entity.AttrName])
	if name == "" {
		return
	}
	switch name[len(name)-1] {
	case '0':
		x.markers[e.ID] = model.TeamBlue
	case '1':
		x.markers[e.ID] = model.TeamOrange
	}
}

func (x *Extractor) noteCamera(e *entity.Entity) {
	pri, ok := e.Attrs.Ref(entity.AttrCameraPRI)
	if !ok {
		return
	}
	if v, ok := e.Attrs.Value(entity.AttrCameraProfile); ok {
		x.cameras[pri] = v
	}
}

// resolveTeam prefers the metadata player list, then the identity's first
// observed team marker.
func (x *Extractor) resolveTeam(id entity.ID, name string) model.Team {
	if t, ok := x.metaTeams[name]; ok {
		return t
	}
	if ref, ok := x.teamRefs[id]; ok {
		return x.markers[ref]
	}
	return model.TeamUnknown
}

func (x *Extractor) fallbackID(p *model.PlayerInfo) string {
	for _, mp := range x.raw.MetaPlayers {
		if mp.Name == p.Name && mp.OnlineID != "" && mp.OnlineID != "0" {
			return mp.OnlineID
		}
	}
	return fmt.Sprintf("entity-%d", p.EntityID)
}

func (x *Extractor) position(d *FrameDelta, e *entity.Entity, attrs entity.Attrs) {
	ref, ok := x.refFor(d, e.ID)
	if !ok {
		return
	}
	state := attrs[entity.AttrRBState]
	pos, ok := vector(state, "Position")
	if !ok {
		return
	}
	rot, _ := vector(state, "Rotation")
	x.raw.Positions = append(x.raw.Positions, model.PositionSample{
		Ref:   ref,
		Frame: d.Frame,
		Pos:   pos,
		Yaw:   rot.X,
		Pitch: rot.Y,
		Roll:  rot.Z,
	})
	x.metrics.AddSamples(metrics.KindPosition, 1)
}

// refFor resolves a moving entity to its owning identity or the ball. Units
// destroyed in this frame still resolve through the binding they just lost.
func (x *Extractor) refFor(d *FrameDelta, id entity.ID) (model.Ref, bool) {
	if identity, ok := x.identity(d, id); ok {
		return model.Ref(identity), true
	}
	if d.HasBall && d.Ball == id {
		return model.BallRef, true
	}
	return 0, false
}

// identity resolves a unit through the live binding, or through the binding
// it lost when destroyed in this frame.
func (x *Extractor) identity(d *FrameDelta, unit entity.ID) (entity.ID, bool) {
	if identity, ok := x.in.Identity(unit); ok {
		return identity, true
	}
	for _, b := range d.Unbound {
		if b.Unit == unit {
			return b.Identity, true
		}
	}
	return 0, false
}

func (x *Extractor) boost(d *FrameDelta, e *entity.Entity, attrs entity.Attrs) error {
	raw, ok := attrs.Value(entity.AttrBoost)
	if !ok {
		return nil
	}
	level, ok := entity.StrictInt(raw)
	if !ok {
		return &DataIntegrityError{Frame: d.Frame, Entity: e.ID, Raw: string(raw)}
	}
	if level < 0 || level > 255 {
		return &DataIntegrityError{Frame: d.Frame, Entity: e.ID, Level: level}
	}
	x.metrics.AddSamples(metrics.KindBoost, 1)

	vehicle, hasVehicle := e.Attrs.Ref(entity.AttrVehicle)
	if hasVehicle {
		if identity, ok := x.identity(d, vehicle); ok {
			x.flush(e.ID, identity)
			x.appendBoost(int(identity), model.ResourceSample{Identity: int(identity), Frame: d.Frame, Level: level})
			return nil
		}
	}
	x.pending.add(e.ID, d.Frame, level)
	if hasVehicle {
		x.pending.setVehicle(e.ID, vehicle)
	}
	return nil
}

func (x *Extractor) drain() {
	for _, b := range x.pending.resolvable(x.in.Identity) {
		x.flush(b.Unit, b.Identity)
	}
}

// flush attributes a component's buffered samples to identity, keeping the
// identity's series ordered by frame.
func (x *Extractor) flush(component, identity entity.ID) {
	samples := x.pending.take(component, int(identity))
	if len(samples) == 0 {
		return
	}
	key := int(identity)
	series := append(x.raw.Boosts[key], samples...)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Frame < series[j].Frame })
	x.raw.Boosts[key] = series
	x.log.Debug("attributed buffered boost samples", "component", component, "identity", identity, "samples", len(samples))
}

func (x *Extractor) appendBoost(key int, s model.ResourceSample) {
	x.raw.Boosts[key] = append(x.raw.Boosts[key], s)
}

// vector reads a 3-component member of a rigid-body state, either as an
// array or as an object with X, Y, Z.
func vector(state json.RawMessage, member string) (r3.Vector, bool) {
	raw, ok := entity.Path(state, member)
	if !ok {
		return r3.Vector{}, false
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 3 {
			return r3.Vector{}, false
		}
		return r3.Vector{X: arr[0], Y: arr[1], Z: arr[2]}, true
	}
	var obj struct {
		X, Y, Z *float64
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.X == nil || obj.Y == nil || obj.Z == nil {
		return r3.Vector{}, false
	}
	return r3.Vector{X: *obj.X, Y: *obj.Y, Z: *obj.Z}, true
}
