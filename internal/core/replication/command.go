package replication

import (
	"fmt"
	"reflect"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/pkg/encoding"
)

// WriteCtx is handed to write functions when applying one component update.
type WriteCtx struct {
	// Commands queues structural changes against the target entity.
	Commands *entity.Commands
	// Entity is the live view of the target entity; write functions may
	// consult existing state, e.g. to append to a history buffer.
	Entity *entity.Entry
	// Tick is the send tick the update was stamped with.
	Tick Tick
	// Log is for traffic diagnostics only.
	Log log.Log
}

// RemoveCtx is handed to remove functions.
type RemoveCtx struct {
	Tick Tick
	Log  log.Log
}

// WriteFn deserializes a payload through the component's rule functions and
// applies it to the entity.
type WriteFn func(ctx *WriteCtx, rule *RuleFns, payload []byte) error

// RemoveFn removes a component and any auxiliary state its write function
// created. Must be idempotent.
type RemoveFn func(ctx *RemoveCtx, ec entity.EntityCommands)

// RuleFns is the type-erased codec pair captured once when a component is
// registered. Dispatch never re-acquires the concrete type.
type RuleFns struct {
	component   reflect.Type
	serialize   func(value any) ([]byte, error)
	deserialize func(payload []byte) (any, error)
}

// NewRuleFns captures a concrete component codec behind type-erased entry
// points.
func NewRuleFns[C any](codec encoding.Codec[C]) *RuleFns {
	return &RuleFns{
		component: entity.TypeOf[C](),
		serialize: func(value any) ([]byte, error) {
			return codec.Encode(value.(C))
		},
		deserialize: func(payload []byte) (any, error) {
			return codec.Decode(payload)
		},
	}
}

// Component returns the component type these rules were captured for.
func (r *RuleFns) Component() reflect.Type {
	return r.component
}

// Serialize encodes a component value for the wire.
func (r *RuleFns) Serialize(value any) ([]byte, error) {
	return r.serialize(value)
}

// Deserialize decodes a wire payload into a component value.
func (r *RuleFns) Deserialize(payload []byte) (any, error) {
	return r.deserialize(payload)
}

type commandFns struct {
	write  WriteFn
	remove RemoveFn
}

type componentFns struct {
	rule     *RuleFns
	defaults commandFns
	// overrides is indexed by marker registry position; nil slots mean the
	// marker has no override for this component. Slots shift together with
	// the registry on marker insertion.
	overrides []*commandFns
}

// CommandTable maps component types to their write/remove behavior:
// marker-scoped overrides, a component default, and a universal fallback.
// Mutated only during setup.
type CommandTable struct {
	components  map[reflect.Type]*componentFns
	markerCount int
}

func NewCommandTable() *CommandTable {
	return &CommandTable{components: make(map[reflect.Type]*componentFns)}
}

// registerMarkerSlot makes room for a newly inserted marker at index,
// shifting existing override slots exactly like the marker registry shifts
// its entries.
func (t *CommandTable) registerMarkerSlot(index int) {
	t.markerCount++
	for _, comp := range t.components {
		comp.overrides = append(comp.overrides, nil)
		copy(comp.overrides[index+1:], comp.overrides[index:])
		comp.overrides[index] = nil
	}
}

// register installs a component with its rule functions and the universal
// default behavior. Registering the same component twice is a configuration
// error.
func (t *CommandTable) register(rule *RuleFns) {
	componentType := rule.Component()
	if _, ok := t.components[componentType]; ok {
		panic(fmt.Sprintf("replication: component %v already registered", componentType))
	}
	t.components[componentType] = &componentFns{
		rule:      rule,
		defaults:  commandFns{write: defaultWrite, remove: defaultRemoveFor(componentType)},
		overrides: make([]*commandFns, t.markerCount),
	}
}

// setDefaults replaces the component-level default pair.
func (t *CommandTable) setDefaults(componentType reflect.Type, write WriteFn, remove RemoveFn) {
	comp := t.mustComponent(componentType)
	comp.defaults = commandFns{write: write, remove: remove}
}

// setMarkerFns installs an override pair for one (marker, component) slot.
func (t *CommandTable) setMarkerFns(componentType reflect.Type, markerIndex int, write WriteFn, remove RemoveFn) {
	comp := t.mustComponent(componentType)
	comp.overrides[markerIndex] = &commandFns{write: write, remove: remove}
}

func (t *CommandTable) mustComponent(componentType reflect.Type) *componentFns {
	comp, ok := t.components[componentType]
	if !ok {
		panic(fmt.Sprintf("replication: component %v was never registered", componentType))
	}
	return comp
}

// known reports whether a component type is registered. Unknown types on
// the wire are traffic errors, not configuration errors.
func (t *CommandTable) known(componentType reflect.Type) bool {
	_, ok := t.components[componentType]
	return ok
}

// resolve picks the effective function pair for one component update on one
// entity: the highest-priority present marker with an override wins, then
// the component default, then the universal default installed at
// registration. Total for every known component type.
func (t *CommandTable) resolve(componentType reflect.Type, em *EntityMarkers) (*RuleFns, commandFns) {
	comp := t.mustComponent(componentType)
	for i, present := range em.Markers() {
		if present && comp.overrides[i] != nil {
			return comp.rule, *comp.overrides[i]
		}
	}
	return comp.rule, comp.defaults
}

// defaultWrite deserializes and stores the component, writing over existing
// state in place and inserting through the command queue otherwise.
func defaultWrite(ctx *WriteCtx, rule *RuleFns, payload []byte) error {
	value, err := rule.Deserialize(payload)
	if err != nil {
		return err
	}
	if _, ok := ctx.Entity.Component(rule.Component()); ok {
		ctx.Entity.SetComponent(value)
		return nil
	}
	ctx.Commands.Entity(ctx.Entity.ID()).Insert(value)
	return nil
}

// defaultRemoveFor builds the universal remove behavior for one component
// type: drop the component, nothing else.
func defaultRemoveFor(componentType reflect.Type) RemoveFn {
	return func(_ *RemoveCtx, ec entity.EntityCommands) {
		ec.Remove(componentType)
	}
}
