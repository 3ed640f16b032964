package parser

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/replay"
)

// Binding is a unit→identity association established or dropped in a frame.
type Binding struct {
	Unit     entity.ID
	Identity entity.ID
}

// FrameDelta is what one frame changed, handed to the Extractor before the
// next frame is applied.
type FrameDelta struct {
	Frame int

	// Observed holds the attribute payload each entity carried this frame
	// (spawn and update merged, update winning).
	Observed map[entity.ID]entity.Attrs
	// Entities maps every observed id to its merged state. Entities destroyed
	// later in the same frame are still present here.
	Entities  map[entity.ID]*entity.Entity
	Destroyed []*entity.Entity

	// Ball is the designated ball after spawns and updates, before destroys.
	Ball    entity.ID
	HasBall bool

	Bound    []Binding
	Unbound  []Binding
	Warnings []model.Warning
}

// ObservedIDs returns the observed entity ids in ascending order.
func (d *FrameDelta) ObservedIDs() []entity.ID {
	return sortedIDs(d.Observed)
}

func (d *FrameDelta) observe(e *entity.Entity, attrs entity.Attrs) {
	cur, ok := d.Observed[e.ID]
	if !ok {
		cur = make(entity.Attrs, len(attrs))
		d.Observed[e.ID] = cur
	}
	for k, v := range attrs {
		cur[k] = v
	}
	d.Entities[e.ID] = e
}

// Ingestor applies mutation records to an entity store and maintains the
// unit→identity binding and the designated ball.
type Ingestor struct {
	store    *entity.Store
	bindings map[entity.ID]entity.ID
	ball     entity.ID
	hasBall  bool
	log      *slog.Logger
}

// NewIngestor returns an ingestor over a fresh store.
func NewIngestor(log *slog.Logger) *Ingestor {
	return &Ingestor{
		store:    entity.NewStore(),
		bindings: make(map[entity.ID]entity.ID),
		log:      log,
	}
}

// Store exposes the entity store for read-only use.
func (in *Ingestor) Store() *entity.Store { return in.store }

// Identity returns the identity currently bound to a unit.
func (in *Ingestor) Identity(unit entity.ID) (entity.ID, bool) {
	id, ok := in.bindings[unit]
	return id, ok
}

// HasUnit reports whether any live unit is bound to the identity.
func (in *Ingestor) HasUnit(identity entity.ID) bool {
	for _, id := range in.bindings {
		if id == identity {
			return true
		}
	}
	return false
}

// Ball returns the designated ball entity.
func (in *Ingestor) Ball() (entity.ID, bool) { return in.ball, in.hasBall }

// Apply applies one frame: spawns, then updates, then destroys, each in id order.
func (in *Ingestor) Apply(frame int, f replay.Frame) *FrameDelta {
	d := &FrameDelta{
		Frame:    frame,
		Observed: make(map[entity.ID]entity.Attrs, len(f.Spawned)+len(f.Updated)),
		Entities: make(map[entity.ID]*entity.Entity, len(f.Spawned)+len(f.Updated)),
	}

	for _, id := range sortedIDs(f.Spawned) {
		attrs := f.Spawned[id]
		var before entity.Roles
		if prev, ok := in.store.Get(id); ok {
			before = prev.Roles
		}
		e := in.store.Spawn(id, attrs, frame)
		in.afterMutation(d, e, attrs, before)
	}

	for _, id := range sortedIDs(f.Updated) {
		e, ok := in.store.Get(id)
		if !ok {
			continue
		}
		attrs := f.Updated[id]
		before := e.Roles
		in.store.Update(id, attrs, frame)
		in.afterMutation(d, e, attrs, before)
	}

	d.Ball, d.HasBall = in.ball, in.hasBall

	for _, id := range f.Destroyed {
		e, ok := in.store.Destroy(id)
		if !ok {
			continue
		}
		if identity, bound := in.bindings[id]; bound {
			delete(in.bindings, id)
			d.Unbound = append(d.Unbound, Binding{Unit: id, Identity: identity})
		}
		if in.hasBall && in.ball == id {
			in.hasBall = false
		}
		d.Destroyed = append(d.Destroyed, e)
	}
	return d
}

func (in *Ingestor) afterMutation(d *FrameDelta, e *entity.Entity, attrs entity.Attrs, before entity.Roles) {
	d.observe(e, attrs)

	if attrs.Has(entity.AttrPawnPRI) {
		in.bind(d, e.ID, attrs)
	}

	if e.Has(entity.RoleBall) && !before.Has(entity.RoleBall) {
		if in.hasBall && in.ball != e.ID {
			if _, live := in.store.Get(in.ball); live {
				w := model.Warning{
					Kind:    model.WarnDuplicateBall,
					Frame:   d.Frame,
					Message: fmt.Sprintf("ball %d spawned while ball %d is live", e.ID, in.ball),
				}
				d.Warnings = append(d.Warnings, w)
				in.log.Warn("second live ball", "frame", d.Frame, "ball", e.ID, "previous", in.ball)
			}
		}
		in.ball = e.ID
		in.hasBall = true
	}
}

// bind records the owning identity of a unit. A missing or negative reference
// drops the binding.
func (in *Ingestor) bind(d *FrameDelta, unit entity.ID, attrs entity.Attrs) {
	identity, ok := attrs.Ref(entity.AttrPawnPRI)
	prev, had := in.bindings[unit]
	if !ok || identity < 0 {
		if had {
			delete(in.bindings, unit)
			d.Unbound = append(d.Unbound, Binding{Unit: unit, Identity: prev})
		}
		return
	}
	if had && prev == identity {
		return
	}
	if had {
		d.Unbound = append(d.Unbound, Binding{Unit: unit, Identity: prev})
	}
	in.bindings[unit] = identity
	d.Bound = append(d.Bound, Binding{Unit: unit, Identity: identity})
}

func sortedIDs(m map[entity.ID]entity.Attrs) []entity.ID {
	ids := make([]entity.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
