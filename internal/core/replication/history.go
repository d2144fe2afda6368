package replication

import (
	"github.com/driftsync/driftsync/internal/core/entity"
)

// History stores every received value of C keyed by its send tick. Attach a
// history-tolerant marker and install HistoryWrite/HistoryRemove for C, and
// out-of-order updates land in the buffer instead of clobbering a single
// current value.
type History[C any] struct {
	Values map[Tick]C
}

// At returns the value received at a given tick.
func (h History[C]) At(tick Tick) (C, bool) {
	v, ok := h.Values[tick]
	return v, ok
}

// Latest returns the value with the newest tick.
func (h History[C]) Latest() (C, Tick, bool) {
	var (
		best     C
		bestTick Tick
		found    bool
	)
	for tick, v := range h.Values {
		if !found || tick.After(bestTick) {
			best, bestTick, found = v, tick, true
		}
	}
	return best, bestTick, found
}

// HistoryWrite returns a write function that inserts each received value
// into History[C] keyed by the update's tick, creating the buffer on first
// use.
func HistoryWrite[C any]() WriteFn {
	return func(ctx *WriteCtx, rule *RuleFns, payload []byte) error {
		value, err := rule.Deserialize(payload)
		if err != nil {
			return err
		}
		if h, ok := entity.Get[History[C]](ctx.Entity); ok {
			h.Values[ctx.Tick] = value.(C)
			return nil
		}
		ctx.Commands.Entity(ctx.Entity.ID()).Insert(History[C]{
			Values: map[Tick]C{ctx.Tick: value.(C)},
		})
		return nil
	}
}

// HistoryRemove returns a remove function that drops both C and its history
// buffer. Idempotent.
func HistoryRemove[C any]() RemoveFn {
	return func(_ *RemoveCtx, ec entity.EntityCommands) {
		ec.Remove(entity.TypeOf[History[C]]())
		ec.Remove(entity.TypeOf[C]())
	}
}
