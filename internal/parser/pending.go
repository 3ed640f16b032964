package parser

import (
	"sort"

	"github.com/pable/go-rl-metrics/internal/entity"
	"github.com/pable/go-rl-metrics/internal/model"
)

// pendingSample is a boost reading whose owning identity was not yet known.
type pendingSample struct {
	Frame int
	Level int
}

// pendingEntry collects the readings of one boost component.
type pendingEntry struct {
	component  entity.ID
	vehicle    entity.ID
	hasVehicle bool
	samples    []pendingSample
}

// pendingQueue buffers unattributed samples keyed by raw component id until
// the component's vehicle and that vehicle's owner are both known.
type pendingQueue struct {
	entries map[entity.ID]*pendingEntry
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{entries: make(map[entity.ID]*pendingEntry)}
}

func (q *pendingQueue) Len() int { return len(q.entries) }

func (q *pendingQueue) Has(component entity.ID) bool {
	_, ok := q.entries[component]
	return ok
}

func (q *pendingQueue) add(component entity.ID, frame, level int) {
	e, ok := q.entries[component]
	if !ok {
		e = &pendingEntry{component: component}
		q.entries[component] = e
	}
	e.samples = append(e.samples, pendingSample{Frame: frame, Level: level})
}

// setVehicle refreshes the last known vehicle of a buffered component.
func (q *pendingQueue) setVehicle(component, vehicle entity.ID) {
	if e, ok := q.entries[component]; ok {
		e.vehicle = vehicle
		e.hasVehicle = true
	}
}

// take removes and returns the buffered samples of a component as resource
// samples attributed to identity.
func (q *pendingQueue) take(component entity.ID, identity int) []model.ResourceSample {
	e, ok := q.entries[component]
	if !ok {
		return nil
	}
	delete(q.entries, component)
	out := make([]model.ResourceSample, 0, len(e.samples))
	for _, s := range e.samples {
		out = append(out, model.ResourceSample{Identity: identity, Frame: s.Frame, Level: s.Level})
	}
	return out
}

// resolvable returns the components whose vehicle now resolves through
// lookup, with the identity each resolves to, ordered by component id.
func (q *pendingQueue) resolvable(lookup func(unit entity.ID) (entity.ID, bool)) []Binding {
	var out []Binding
	for id, e := range q.entries {
		if !e.hasVehicle {
			continue
		}
		if identity, ok := lookup(e.vehicle); ok {
			out = append(out, Binding{Unit: id, Identity: identity})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit < out[j].Unit })
	return out
}

// remaining returns the unresolved entries ordered by component id.
func (q *pendingQueue) remaining() []*pendingEntry {
	out := make([]*pendingEntry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].component < out[j].component })
	return out
}
