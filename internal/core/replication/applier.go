package replication

import (
	"reflect"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/observability/log"
)

// Update is one inbound component update, already framed by the transport:
// target entity, component identity, send tick and the raw payload.
type Update struct {
	Entity    entity.ID
	Component reflect.Type
	Tick      Tick
	Payload   []byte
}

// Removal is one inbound component removal.
type Removal struct {
	Entity    entity.ID
	Component reflect.Type
	Tick      Tick
}

type appliedKey struct {
	entity    entity.ID
	component reflect.Type
}

// Applier drives the receive-side dispatch: snapshot the entity's markers,
// resolve the effective function pair, gate on tick staleness, apply.
//
// All traffic-level failures are local: a bad update is dropped with a
// diagnostic and the rest of the batch proceeds.
type Applier struct {
	registry *Registry
	logger   log.Log

	snapshot *EntityMarkers
	commands *entity.Commands
	applied  map[appliedKey]Tick
}

func NewApplier(registry *Registry, logger log.Log) *Applier {
	return &Applier{
		registry: registry,
		logger:   logger,
		snapshot: NewEntityMarkers(registry.Markers),
		commands: entity.NewCommands(),
		applied:  make(map[appliedKey]Tick),
	}
}

// Apply processes one component update against the world. Queued structural
// commands are flushed before returning, so each entity's update completes
// before the next one is processed.
func (a *Applier) Apply(w *entity.World, u Update) {
	e, ok := w.Entry(u.Entity)
	if !ok {
		a.logger.Debug("dropping update for unknown entity",
			log.Uint64("entity", uint64(u.Entity)),
		)
		return
	}
	if !a.registry.Commands.known(u.Component) {
		a.logger.Warn("dropping update for unregistered component",
			log.String("component", u.Component.String()),
		)
		return
	}

	a.snapshot.Read(a.registry.Markers, e)

	key := appliedKey{entity: u.Entity, component: u.Component}
	if !a.snapshot.NeedHistory() {
		if last, seen := a.applied[key]; seen && !u.Tick.After(last) {
			// Stale delivery on an unreliable channel; dropping it is the
			// designed behavior, not an error.
			a.logger.Debug("discarding stale update",
				log.Uint64("entity", uint64(u.Entity)),
				log.String("component", u.Component.String()),
				log.Uint64("tick", uint64(u.Tick)),
				log.Uint64("last", uint64(last)),
			)
			return
		}
	}

	rule, fns := a.registry.Commands.resolve(u.Component, a.snapshot)
	ctx := &WriteCtx{Commands: a.commands, Entity: e, Tick: u.Tick, Log: a.logger}
	if err := fns.write(ctx, rule, u.Payload); err != nil {
		a.commands.Apply(w)
		a.logger.Warn("dropping malformed update",
			log.Uint64("entity", uint64(u.Entity)),
			log.String("component", u.Component.String()),
			log.Err(err),
		)
		return
	}
	a.commands.Apply(w)

	if last, seen := a.applied[key]; !seen || u.Tick.After(last) {
		a.applied[key] = u.Tick
	}
}

// ApplyRemoval processes one component removal. Removals obey the same
// staleness rule as updates; the resolved remove function must be
// idempotent.
func (a *Applier) ApplyRemoval(w *entity.World, r Removal) {
	e, ok := w.Entry(r.Entity)
	if !ok {
		return
	}
	if !a.registry.Commands.known(r.Component) {
		a.logger.Warn("dropping removal for unregistered component",
			log.String("component", r.Component.String()),
		)
		return
	}

	a.snapshot.Read(a.registry.Markers, e)

	key := appliedKey{entity: r.Entity, component: r.Component}
	if !a.snapshot.NeedHistory() {
		if last, seen := a.applied[key]; seen && !r.Tick.After(last) {
			return
		}
	}

	_, fns := a.registry.Commands.resolve(r.Component, a.snapshot)
	ctx := &RemoveCtx{Tick: r.Tick, Log: a.logger}
	fns.remove(ctx, a.commands.Entity(r.Entity))
	a.commands.Apply(w)

	if last, seen := a.applied[key]; !seen || r.Tick.After(last) {
		a.applied[key] = r.Tick
	}
}

// Forget drops the tick ledger for a despawned entity.
func (a *Applier) Forget(id entity.ID) {
	for key := range a.applied {
		if key.entity == id {
			delete(a.applied, key)
		}
	}
}
