package replication

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/pkg/encoding"
)

type health struct {
	HP int
}

func encodeHealth(t *testing.T, v health) []byte {
	t.Helper()
	payload, err := encoding.Gob[health]().Encode(v)
	require.NoError(t, err)
	return payload
}

func TestApplierDiscardsStaleUpdates(t *testing.T) {
	r := NewRegistry()
	RegisterComponent[health](r, encoding.Gob[health]())
	a := NewApplier(r, log.Nop())

	w := entity.NewWorld()
	e := w.Spawn()
	compType := entity.TypeOf[health]()

	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 5, Payload: encodeHealth(t, health{HP: 50})})
	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 3, Payload: encodeHealth(t, health{HP: 30})})

	got, ok := entity.Get[health](e)
	require.True(t, ok)
	require.Equal(t, 50, got.HP, "tick-3 update must not overwrite tick-5 state")

	// A genuinely newer update still lands.
	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 6, Payload: encodeHealth(t, health{HP: 60})})
	got, _ = entity.Get[health](e)
	require.Equal(t, 60, got.HP)
}

type historyMarker struct{}

func TestApplierHistoryTolerantPath(t *testing.T) {
	r := NewRegistry()
	RegisterMarker[historyMarker](r, MarkerConfig{NeedHistory: true})
	RegisterComponent[health](r, encoding.Gob[health]())
	SetMarkerFns[historyMarker, health](r, HistoryWrite[health](), HistoryRemove[health]())
	a := NewApplier(r, log.Nop())

	w := entity.NewWorld()
	e := w.Spawn()
	entity.Tag[historyMarker](e)
	compType := entity.TypeOf[health]()

	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 5, Payload: encodeHealth(t, health{HP: 50})})
	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 3, Payload: encodeHealth(t, health{HP: 30})})

	h, ok := entity.Get[History[health]](e)
	require.True(t, ok)
	require.Len(t, h.Values, 2, "both ticks must reach the history buffer")

	at5, ok := h.At(5)
	require.True(t, ok)
	require.Equal(t, 50, at5.HP)
	at3, ok := h.At(3)
	require.True(t, ok)
	require.Equal(t, 30, at3.HP)

	latest, tick, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, Tick(5), tick)
	require.Equal(t, 50, latest.HP)

	// History removal drops the buffer alongside the component.
	a.ApplyRemoval(w, Removal{Entity: e.ID(), Component: compType, Tick: 6})
	_, ok = entity.Get[History[health]](e)
	require.False(t, ok)
}

func TestApplierDropsMalformedPayload(t *testing.T) {
	r := NewRegistry()
	RegisterComponent[health](r, encoding.Gob[health]())
	a := NewApplier(r, log.Nop())

	w := entity.NewWorld()
	e := w.Spawn()
	compType := entity.TypeOf[health]()

	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 4, Payload: []byte{0xde, 0xad}})
	_, ok := entity.Get[health](e)
	require.False(t, ok, "malformed update must not apply")

	// The bad update must not poison the tick ledger either.
	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 4, Payload: encodeHealth(t, health{HP: 10})})
	got, ok := entity.Get[health](e)
	require.True(t, ok)
	require.Equal(t, 10, got.HP)
}

func TestApplierUnknownTargets(t *testing.T) {
	r := NewRegistry()
	RegisterComponent[health](r, encoding.Gob[health]())
	a := NewApplier(r, log.Nop())
	w := entity.NewWorld()

	// Unknown entity and unregistered component types are traffic errors:
	// dropped without panicking.
	a.Apply(w, Update{Entity: 999, Component: entity.TypeOf[health](), Tick: 1, Payload: encodeHealth(t, health{HP: 1})})

	e := w.Spawn()
	a.Apply(w, Update{Entity: e.ID(), Component: entity.TypeOf[posX](), Tick: 1, Payload: nil})
	_, ok := entity.Get[posX](e)
	require.False(t, ok)
}

func TestApplierForget(t *testing.T) {
	r := NewRegistry()
	RegisterComponent[health](r, encoding.Gob[health]())
	a := NewApplier(r, log.Nop())

	w := entity.NewWorld()
	e := w.Spawn()
	compType := entity.TypeOf[health]()

	a.Apply(w, Update{Entity: e.ID(), Component: compType, Tick: 9, Payload: encodeHealth(t, health{HP: 90})})
	id := e.ID()
	w.Despawn(id)
	a.Forget(id)

	// A respawned entity under the same ID starts with a clean ledger, so
	// an old tick applies again.
	respawned := w.SpawnAt(id)
	a.Apply(w, Update{Entity: id, Component: compType, Tick: 2, Payload: encodeHealth(t, health{HP: 20})})
	got, ok := entity.Get[health](respawned)
	require.True(t, ok)
	require.Equal(t, 20, got.HP)
}
