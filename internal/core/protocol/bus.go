package protocol

import "sync"

// ClientBus buffers messages raised by the local client until a transport
// backend drains them. The replication core only ever talks to the bus;
// backends own the sockets.
//
// The tick loop is single-threaded, but backends pump from their own
// goroutines, so the buffers are mutex-guarded.
type ClientBus struct {
	mu      sync.Mutex
	state   ConnectionState
	pending []Outgoing
	dropped uint64
}

func NewClientBus() *ClientBus {
	return &ClientBus{}
}

// Send queues one message for the backend. Messages sent while disconnected
// are dropped and counted; the caller gates sending on connection state.
func (c *ClientBus) Send(channel ChannelID, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		c.dropped++
		return
	}
	c.pending = append(c.pending, Outgoing{Channel: channel, Payload: payload})
}

// DrainSent removes and returns all queued messages in send order.
func (c *ClientBus) DrainSent() []Outgoing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

// Dropped returns how many messages were discarded while disconnected.
func (c *ClientBus) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *ClientBus) SetState(state ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

func (c *ClientBus) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ClientBus) Connected() bool {
	return c.State() == StateConnected
}

// ServerBus buffers messages received by the authority, per channel, until
// the receive phase drains them.
type ServerBus struct {
	mu       sync.Mutex
	running  bool
	received map[ChannelID][]Incoming
}

func NewServerBus() *ServerBus {
	return &ServerBus{received: make(map[ChannelID][]Incoming)}
}

// Insert records one received message. Called by transport backends.
func (s *ServerBus) Insert(channel ChannelID, client ClientID, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.received[channel] = append(s.received[channel], Incoming{Client: client, Payload: payload})
}

// Receive removes and returns all pending messages for one channel,
// preserving arrival order.
func (s *ServerBus) Receive(channel ChannelID) []Incoming {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.received[channel]
	delete(s.received, channel)
	return out
}

// Clear drops all pending messages on every channel.
func (s *ServerBus) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = make(map[ChannelID][]Incoming)
}

func (s *ServerBus) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
	if !running {
		s.received = make(map[ChannelID][]Incoming)
	}
}

func (s *ServerBus) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
