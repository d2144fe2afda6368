package events

import (
	"fmt"
	"reflect"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/protocol"
	"github.com/driftsync/driftsync/pkg/sequence"
)

// FromClient pairs a deserialized event payload with the identity of the
// client that sent it. Produced only on the receiving (authority) side and
// by the local loopback path.
type FromClient[T any] struct {
	Client protocol.ClientID
	Event  T
}

// Hub owns the per-type event queues: locally raised events waiting for the
// send phase, and received envelopes waiting for server-side consumers.
// Queues exist only for registered event types.
type Hub struct {
	local      map[reflect.Type]any // *sequence.Queue[T]
	fromClient map[reflect.Type]any // *sequence.Queue[FromClient[T]]
}

func NewHub() *Hub {
	return &Hub{
		local:      make(map[reflect.Type]any),
		fromClient: make(map[reflect.Type]any),
	}
}

// addQueues creates the queue pair for T. Called once at registration.
func addQueues[T any](h *Hub) {
	t := entity.TypeOf[T]()
	h.local[t] = sequence.NewQueue[T]()
	h.fromClient[t] = sequence.NewQueue[FromClient[T]]()
}

func localQueue[T any](h *Hub) *sequence.Queue[T] {
	q, ok := h.local[entity.TypeOf[T]()]
	if !ok {
		panic(fmt.Sprintf("events: event type %v was never registered", entity.TypeOf[T]()))
	}
	return q.(*sequence.Queue[T])
}

func fromClientQueue[T any](h *Hub) *sequence.Queue[FromClient[T]] {
	q, ok := h.fromClient[entity.TypeOf[T]()]
	if !ok {
		panic(fmt.Sprintf("events: event type %v was never registered", entity.TypeOf[T]()))
	}
	return q.(*sequence.Queue[FromClient[T]])
}

// Emit raises an event locally. On a connected client it will be serialized
// and sent during the next send phase; on the authority it will loop back
// as a FromClient envelope. Emitting an unregistered type is a
// configuration error and panics.
func Emit[T any](h *Hub, event T) {
	localQueue[T](h).Push(event)
}

// DrainLocal removes and returns all locally raised events of type T in
// emit order.
func DrainLocal[T any](h *Hub) []T {
	return localQueue[T](h).Drain()
}

// PendingLocal returns how many events of type T are waiting to be sent.
func PendingLocal[T any](h *Hub) int {
	return localQueue[T](h).Len()
}

// PushFromClient appends one received envelope.
func PushFromClient[T any](h *Hub, envelope FromClient[T]) {
	fromClientQueue[T](h).Push(envelope)
}

// DrainFromClient removes and returns all received envelopes of type T in
// arrival order. This is the consumption point for server-side systems.
func DrainFromClient[T any](h *Hub) []FromClient[T] {
	return fromClientQueue[T](h).Drain()
}
