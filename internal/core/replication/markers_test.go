package replication

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/entity"
)

type markerA struct{}
type markerB struct{}
type markerC struct{}
type markerD struct{}

func TestMarkersSorting(t *testing.T) {
	m := NewMarkers()
	m.Insert(entity.TypeOf[markerA](), MarkerConfig{})
	m.Insert(entity.TypeOf[markerB](), MarkerConfig{Priority: 2})
	m.Insert(entity.TypeOf[markerC](), MarkerConfig{Priority: 1})
	m.Insert(entity.TypeOf[markerD](), MarkerConfig{})

	priorities := make([]int, m.Len())
	for i := range priorities {
		priorities[i] = m.Priority(i)
	}
	require.Equal(t, []int{2, 1, 0, 0}, priorities)

	// Equal priorities keep registration order.
	require.Equal(t, 2, m.IndexOf(entity.TypeOf[markerA]()))
	require.Equal(t, 3, m.IndexOf(entity.TypeOf[markerD]()))
}

func TestMarkersInsertShiftsIndices(t *testing.T) {
	m := NewMarkers()
	first := m.Insert(entity.TypeOf[markerA](), MarkerConfig{Priority: 1})
	require.Equal(t, 0, first)

	// A higher-priority marker takes the front; the earlier index is stale.
	second := m.Insert(entity.TypeOf[markerB](), MarkerConfig{Priority: 5})
	require.Equal(t, 0, second)
	require.Equal(t, 1, m.IndexOf(entity.TypeOf[markerA]()))
}

func TestMarkersUnregisteredLookupPanics(t *testing.T) {
	m := NewMarkers()
	require.Panics(t, func() {
		m.IndexOf(entity.TypeOf[markerA]())
	})
}

func TestEntityMarkersRead(t *testing.T) {
	m := NewMarkers()
	m.Insert(entity.TypeOf[markerA](), MarkerConfig{Priority: 5})
	m.Insert(entity.TypeOf[markerB](), MarkerConfig{Priority: 1, NeedHistory: true})

	w := entity.NewWorld()
	e := w.Spawn()
	entity.Tag[markerB](e)

	em := NewEntityMarkers(m)
	em.Read(m, e)
	require.Equal(t, []bool{false, true}, em.Markers())
	require.True(t, em.NeedHistory())

	// Refresh against an entity without history-tolerant markers resets
	// the aggregate flag.
	plain := w.Spawn()
	entity.Tag[markerA](plain)
	em.Read(m, plain)
	require.Equal(t, []bool{true, false}, em.Markers())
	require.False(t, em.NeedHistory())
}
