package replication

import (
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/pkg/encoding"
)

// Registry is the shared dispatch configuration: the marker registry plus
// the command function table. Built once during setup, then treated as
// immutable by every replication pass. Tests construct their own instances.
type Registry struct {
	Markers  *Markers
	Commands *CommandTable
}

func NewRegistry() *Registry {
	return &Registry{
		Markers:  NewMarkers(),
		Commands: NewCommandTable(),
	}
}

// RegisterMarker registers the tag type M as a dispatch marker and opens an
// override slot for it on every component. Returns the marker's index at
// insertion time; later insertions may shift it.
func RegisterMarker[M any](r *Registry, config MarkerConfig) int {
	index := r.Markers.Insert(entity.TypeOf[M](), config)
	r.Commands.registerMarkerSlot(index)
	return index
}

// RegisterComponent makes C known to the dispatch table, capturing its codec
// as type-erased rule functions. Until defaults or overrides are installed,
// C gets the universal deserialize-and-insert / remove-component behavior.
func RegisterComponent[C any](r *Registry, codec encoding.Codec[C]) {
	r.Commands.register(NewRuleFns[C](codec))
}

// SetCommandFns replaces the component-level default pair for C.
// C must already be registered; installing functions for an unknown
// component is a configuration error and panics.
func SetCommandFns[C any](r *Registry, write WriteFn, remove RemoveFn) {
	r.Commands.setDefaults(entity.TypeOf[C](), write, remove)
}

// SetMarkerFns installs a marker-scoped override: when M is present on the
// target entity and no higher-priority marker claims the update first,
// write and remove replace C's defaults. Both M and C must already be
// registered; either missing is a configuration error and panics.
func SetMarkerFns[M any, C any](r *Registry, write WriteFn, remove RemoveFn) {
	index := r.Markers.IndexOf(entity.TypeOf[M]())
	r.Commands.setMarkerFns(entity.TypeOf[C](), index, write, remove)
}
