package entity

import "reflect"

// Commands queues structural world mutations so that write and remove
// functions can record changes without invalidating the entity view they
// were handed. Apply flushes the queue; the applier does this after every
// processed update.
type Commands struct {
	ops []func(*World)
}

func NewCommands() *Commands {
	return &Commands{}
}

// Entity scopes queued commands to one entity.
func (c *Commands) Entity(id ID) EntityCommands {
	return EntityCommands{commands: c, id: id}
}

// Apply runs all queued commands in order and empties the queue.
func (c *Commands) Apply(w *World) {
	for _, op := range c.ops {
		op(w)
	}
	c.ops = c.ops[:0]
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.ops)
}

// EntityCommands queues mutations for a single entity. Commands targeting an
// entity that has been despawned in the meantime are dropped silently.
type EntityCommands struct {
	commands *Commands
	id       ID
}

func (ec EntityCommands) ID() ID {
	return ec.id
}

// Insert stores value as a component under its dynamic type.
func (ec EntityCommands) Insert(value any) {
	ec.commands.ops = append(ec.commands.ops, func(w *World) {
		if e, ok := w.Entry(ec.id); ok {
			e.SetComponent(value)
		}
	})
}

// Remove drops the component stored under t.
func (ec EntityCommands) Remove(t reflect.Type) {
	ec.commands.ops = append(ec.commands.ops, func(w *World) {
		if e, ok := w.Entry(ec.id); ok {
			e.RemoveComponent(t)
		}
	})
}

// Despawn removes the entity entirely.
func (ec EntityCommands) Despawn() {
	ec.commands.ops = append(ec.commands.ops, func(w *World) {
		w.Despawn(ec.id)
	})
}
