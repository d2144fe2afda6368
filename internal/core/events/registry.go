package events

import (
	"fmt"
	"reflect"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
	"github.com/driftsync/driftsync/pkg/encoding"
)

// EntityMapper is implemented by events that embed entity references. The
// returned copy has every reference passed through mapFn; register such
// events with RegisterMapped so references are rewritten to the authority's
// IDs before leaving the process.
type EntityMapper[T any] interface {
	MapEntities(mapFn func(entity.ID) entity.ID) T
}

// entry is one registered event type, reduced to type-erased operations.
// The concrete type is captured exactly once, at registration; everything
// after dispatches through these uniform signatures.
type entry struct {
	channel       protocol.ChannelID
	name          string
	send          func(*Session)
	receive       func(*Session)
	resendLocally func(*Session)
	reset         func(*Session)
}

// Registry holds the per-event-type function bundles in registration order.
// Mutated only during setup; both peers must register the same event types
// in the same order so channel IDs line up.
type Registry struct {
	logger     log.Log
	entries    []entry
	registered map[reflect.Type]struct{}
}

func NewRegistry(logger log.Log) *Registry {
	return &Registry{
		logger:     logger,
		registered: make(map[reflect.Type]struct{}),
	}
}

// Register adds a client event type on a fresh channel with the default
// binary codec.
func Register[T any](r *Registry, hub *Hub, channels *protocol.Channels, kind protocol.ChannelKind) protocol.ChannelID {
	return RegisterWith[T](r, hub, channels, kind, encoding.Gob[T]())
}

// RegisterWith is Register with a caller-supplied codec, e.g. for payloads
// resolved through a runtime type registry. The codec must round-trip.
func RegisterWith[T any](r *Registry, hub *Hub, channels *protocol.Channels, kind protocol.ChannelKind, codec encoding.Codec[T]) protocol.ChannelID {
	return register(r, hub, channels, kind, codec, nil)
}

// RegisterMapped is Register for events carrying entity references: each
// event is remapped local-to-remote before serialization. Always use it
// for events that contain entities.
func RegisterMapped[T EntityMapper[T]](r *Registry, hub *Hub, channels *protocol.Channels, kind protocol.ChannelKind) protocol.ChannelID {
	return RegisterMappedWith[T](r, hub, channels, kind, encoding.Gob[T]())
}

// RegisterMappedWith combines RegisterMapped with a custom codec.
func RegisterMappedWith[T EntityMapper[T]](r *Registry, hub *Hub, channels *protocol.Channels, kind protocol.ChannelKind, codec encoding.Codec[T]) protocol.ChannelID {
	return register(r, hub, channels, kind, codec, func(s *Session, event T) T {
		return event.MapEntities(s.Peers.Remote)
	})
}

func register[T any](r *Registry, hub *Hub, channels *protocol.Channels, kind protocol.ChannelKind, codec encoding.Codec[T], mapFn func(*Session, T) T) protocol.ChannelID {
	eventType := entity.TypeOf[T]()
	if _, ok := r.registered[eventType]; ok {
		panic(fmt.Sprintf("events: event type %v already registered", eventType))
	}
	r.registered[eventType] = struct{}{}
	addQueues[T](hub)

	channel := channels.CreateClientChannel(kind)
	name := eventType.String()
	r.entries = append(r.entries, entry{
		channel:       channel,
		name:          name,
		send:          sendFn[T](r.logger, channel, name, codec, mapFn),
		receive:       receiveFn[T](r.logger, channel, name, codec),
		resendLocally: resendLocallyFn[T](r.logger, name),
		reset:         resetFn[T](r.logger, name),
	})
	return channel
}

// sendFn drains locally raised events, serializes each and hands the bytes
// to the client bus. A value that fails to serialize is skipped with a
// diagnostic; it never aborts the rest of the batch.
func sendFn[T any](logger log.Log, channel protocol.ChannelID, name string, codec encoding.Codec[T], mapFn func(*Session, T) T) func(*Session) {
	return func(s *Session) {
		for _, event := range DrainLocal[T](s.Events) {
			if mapFn != nil {
				event = mapFn(s, event)
			}
			payload, err := codec.Encode(event)
			if err != nil {
				logger.Error("skipping unserializable client event",
					log.String("event", name),
					log.Err(err),
				)
				continue
			}
			s.Client.Send(channel, payload)
		}
	}
}

// receiveFn deserializes every pending inbound message on the entry's
// channel independently; one bad payload is dropped with a diagnostic and
// the remaining messages still go through.
func receiveFn[T any](logger log.Log, channel protocol.ChannelID, name string, codec encoding.Codec[T]) func(*Session) {
	return func(s *Session) {
		for _, msg := range s.Server.Receive(channel) {
			event, err := codec.Decode(msg.Payload)
			if err != nil {
				logger.Debug("dropping undecodable client event",
					log.String("event", name),
					log.String("client", string(msg.Client)),
					log.Err(err),
				)
				continue
			}
			PushFromClient(s.Events, FromClient[T]{Client: msg.Client, Event: event})
		}
	}
}

// resendLocallyFn converts locally raised events straight into received
// envelopes tagged with the authority's own identity, bypassing the
// transport. Order is preserved.
func resendLocallyFn[T any](logger log.Log, name string) func(*Session) {
	return func(s *Session) {
		events := DrainLocal[T](s.Events)
		if len(events) == 0 {
			return
		}
		logger.Debug("resending events locally",
			log.String("event", name),
			log.Int("count", len(events)),
		)
		for _, event := range events {
			PushFromClient(s.Events, FromClient[T]{Client: protocol.ServerID, Event: event})
		}
	}
}

// resetFn discards queued events so a reconnecting client starts from an
// empty backlog instead of replaying stale input.
func resetFn[T any](logger log.Log, name string) func(*Session) {
	return func(s *Session) {
		if dropped := len(DrainLocal[T](s.Events)); dropped > 0 {
			logger.Warn("discarded client events due to a disconnect",
				log.String("event", name),
				log.Int("count", dropped),
			)
		}
	}
}

// Len returns the number of registered event types.
func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) runSend(s *Session) {
	for i := range r.entries {
		r.entries[i].send(s)
	}
}

func (r *Registry) runReceive(s *Session) {
	for i := range r.entries {
		r.entries[i].receive(s)
	}
}

func (r *Registry) runResendLocally(s *Session) {
	for i := range r.entries {
		r.entries[i].resendLocally(s)
	}
}

func (r *Registry) runReset(s *Session) {
	for i := range r.entries {
		r.entries[i].reset(s)
	}
}
