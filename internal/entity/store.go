package entity

import "sort"

// ID is an entity id, stable for the entity's lifetime and reusable after
// it is destroyed.
type ID int

// Entity is one live entity and its accumulated attributes.
type Entity struct {
	ID         ID
	Attrs      Attrs
	Roles      Roles
	SpawnFrame int
	LastFrame  int // last frame whose mutation changed the attributes
}

// Has reports whether the entity carries the given role tag.
func (e *Entity) Has(r Roles) bool { return e.Roles.Has(r) }

// Store holds the authoritative merged attribute set of every live entity.
// It is owned by a single reduction and is not safe for concurrent use.
type Store struct {
	entities map[ID]*Entity
	revision uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entities: make(map[ID]*Entity)}
}

// Spawn creates the entity, or merges attrs into it if the id is already live.
func (s *Store) Spawn(id ID, attrs Attrs, frame int) *Entity {
	e, ok := s.entities[id]
	if !ok {
		e = &Entity{ID: id, Attrs: make(Attrs, len(attrs)), SpawnFrame: frame, LastFrame: frame}
		for k, v := range attrs {
			e.Attrs[k] = v
		}
		e.Roles = DeriveRoles(e.Attrs)
		s.entities[id] = e
		s.revision++
		return e
	}
	s.merge(e, attrs, frame)
	return e
}

// Update merges attrs into a live entity. It returns false, leaving the store
// untouched, when the id is unknown or every incoming value is already current.
func (s *Store) Update(id ID, attrs Attrs, frame int) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	return s.merge(e, attrs, frame)
}

// Destroy removes the entity and returns its final state. Unknown ids are a no-op.
func (s *Store) Destroy(id ID) (*Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	delete(s.entities, id)
	s.revision++
	return e, true
}

// Get returns a live entity.
func (s *Store) Get(id ID) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Len returns the number of live entities.
func (s *Store) Len() int { return len(s.entities) }

// Revision increases on every effective change; no-op writes leave it alone.
func (s *Store) Revision() uint64 { return s.revision }

// WithRole returns live entities carrying the role, ordered by id.
func (s *Store) WithRole(r Roles) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.Has(r) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) merge(e *Entity, attrs Attrs, frame int) bool {
	if !changes(e.Attrs, attrs) {
		return false
	}
	for k, v := range attrs {
		e.Attrs[k] = v
	}
	e.Roles = DeriveRoles(e.Attrs)
	e.LastFrame = frame
	s.revision++
	return true
}

// changes reports whether merging incoming into current would alter anything.
func changes(current, incoming Attrs) bool {
	for k, v := range incoming {
		cur, ok := current[k]
		if !ok || !Equal(cur, v) {
			return true
		}
	}
	return false
}
