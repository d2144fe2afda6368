package replication

import (
	"fmt"
	"reflect"
	"sort"
)

// MarkerConfig is the user-supplied configuration for a marker.
type MarkerConfig struct {
	// Priority orders markers during resolution; higher resolves first.
	// Ties keep registration order.
	Priority int

	// NeedHistory marks updates for entities carrying this marker as
	// order-tolerant: stale updates are handed to the write function
	// instead of being discarded. History-aware write functions are
	// expected to key stored values by tick.
	NeedHistory bool
}

type marker struct {
	tag    reflect.Type
	config MarkerConfig
}

// Markers is the registry of dispatch markers, kept sorted by descending
// priority. Mutated only during setup; read on every replication pass.
type Markers struct {
	entries []marker
}

func NewMarkers() *Markers {
	return &Markers{}
}

// Insert adds a marker, keeping descending-priority order. Among equal
// priorities, earlier registrations keep lower indices.
//
// The returned index may be invalidated by later insertions; re-resolve by
// identity with IndexOf instead of caching it.
func (m *Markers) Insert(tag reflect.Type, config MarkerConfig) int {
	index := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].config.Priority < config.Priority
	})
	m.entries = append(m.entries, marker{})
	copy(m.entries[index+1:], m.entries[index:])
	m.entries[index] = marker{tag: tag, config: config}
	return index
}

// IndexOf returns the current index of a marker by its tag identity.
// An unregistered tag is a configuration error and panics.
func (m *Markers) IndexOf(tag reflect.Type) int {
	for i, entry := range m.entries {
		if entry.tag == tag {
			return i
		}
	}
	panic(fmt.Sprintf("replication: marker %v was never registered", tag))
}

// Len returns the number of registered markers.
func (m *Markers) Len() int {
	return len(m.entries)
}

// NeedHistory reports whether the marker at index tolerates out-of-order
// updates.
func (m *Markers) NeedHistory(index int) bool {
	return m.entries[index].config.NeedHistory
}

// Priority returns the priority of the marker at index.
func (m *Markers) Priority(index int) int {
	return m.entries[index].config.Priority
}

// TagView is the entity probe consumed when building snapshots; satisfied
// by *entity.Entry.
type TagView interface {
	HasTag(tag reflect.Type) bool
}

// EntityMarkers is the per-entity snapshot of marker presence, rebuilt once
// per entity per replication pass. Indices correspond to Markers order.
type EntityMarkers struct {
	present     []bool
	needHistory bool
}

func NewEntityMarkers(m *Markers) *EntityMarkers {
	return &EntityMarkers{present: make([]bool, 0, m.Len())}
}

// Read clears and repopulates the snapshot by probing the entity once per
// registered marker. Entity state itself is never mutated.
func (em *EntityMarkers) Read(m *Markers, view TagView) {
	em.present = em.present[:0]
	em.needHistory = false

	for _, entry := range m.entries {
		contains := view.HasTag(entry.tag)
		em.present = append(em.present, contains)
		if contains && entry.config.NeedHistory {
			em.needHistory = true
		}
	}
}

// Markers returns the presence vector. Valid until the next Read.
func (em *EntityMarkers) Markers() []bool {
	return em.present
}

// NeedHistory reports whether any present marker tolerates out-of-order
// updates.
func (em *EntityMarkers) NeedHistory() bool {
	return em.needHistory
}
