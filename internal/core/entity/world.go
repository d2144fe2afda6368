package entity

import (
	"reflect"
)

// ID addresses one entity. IDs are assigned by the authority; clients learn
// the authority's IDs through a PeerMap.
type ID uint64

// World is the entity store the replication core operates on.
//
// It is deliberately small: typed component fragments keyed by their Go type,
// plus a set of data-free tags used for dispatch. The replication core only
// probes and mutates it through Entry and Commands; it never iterates the
// whole population.
type World struct {
	entities map[ID]*Entry
	nextID   ID
}

func NewWorld() *World {
	return &World{entities: make(map[ID]*Entry)}
}

// Spawn creates an empty entity with a fresh ID.
func (w *World) Spawn() *Entry {
	w.nextID++
	return w.SpawnAt(w.nextID)
}

// SpawnAt creates an empty entity under a caller-chosen ID, replacing any
// previous entity with that ID.
func (w *World) SpawnAt(id ID) *Entry {
	e := &Entry{
		id:         id,
		tags:       make(map[reflect.Type]struct{}),
		components: make(map[reflect.Type]any),
	}
	w.entities[id] = e
	if id > w.nextID {
		w.nextID = id
	}
	return e
}

// Entry returns the entity with the given ID.
func (w *World) Entry(id ID) (*Entry, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Despawn removes an entity and all its state.
func (w *World) Despawn(id ID) {
	delete(w.entities, id)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Entry is a mutable view of one entity.
type Entry struct {
	id         ID
	tags       map[reflect.Type]struct{}
	components map[reflect.Type]any
}

func (e *Entry) ID() ID {
	return e.id
}

// HasTag reports whether the entity carries the given tag type.
func (e *Entry) HasTag(tag reflect.Type) bool {
	_, ok := e.tags[tag]
	return ok
}

// AddTag attaches a data-free tag.
func (e *Entry) AddTag(tag reflect.Type) {
	e.tags[tag] = struct{}{}
}

// RemoveTag detaches a tag. Removing an absent tag is a no-op.
func (e *Entry) RemoveTag(tag reflect.Type) {
	delete(e.tags, tag)
}

// Component returns the raw component value stored under t.
func (e *Entry) Component(t reflect.Type) (any, bool) {
	v, ok := e.components[t]
	return v, ok
}

// SetComponent stores value under its dynamic type.
func (e *Entry) SetComponent(value any) {
	e.components[reflect.TypeOf(value)] = value
}

// RemoveComponent drops the component stored under t. Idempotent.
func (e *Entry) RemoveComponent(t reflect.Type) {
	delete(e.components, t)
}

// TypeOf returns the reflect.Type used to key component and tag storage for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Tag attaches the tag type M to the entity.
func Tag[M any](e *Entry) {
	e.AddTag(TypeOf[M]())
}

// Untag removes the tag type M from the entity.
func Untag[M any](e *Entry) {
	e.RemoveTag(TypeOf[M]())
}

// Get returns the component of type C, if present.
func Get[C any](e *Entry) (C, bool) {
	v, ok := e.components[TypeOf[C]()]
	if !ok {
		var zero C
		return zero, false
	}
	return v.(C), true
}

// Set stores a component of type C.
func Set[C any](e *Entry, value C) {
	e.components[TypeOf[C]()] = value
}

// Remove drops the component of type C. Idempotent.
func Remove[C any](e *Entry) {
	delete(e.components, TypeOf[C]())
}
