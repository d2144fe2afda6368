package events

import (
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

// Session is the per-process replication state handed into every tick: the
// transport buses, the event queues and the entity ID mapping. A process
// acting as both server and client (listen server) populates both buses.
type Session struct {
	Client *protocol.ClientBus
	Server *protocol.ServerBus
	Events *Hub
	Peers  *entity.PeerMap
}

// ServerRunning reports whether the local process is accepting client
// traffic.
func (s *Session) ServerRunning() bool {
	return s.Server != nil && s.Server.Running()
}

// ClientConnected reports whether the local client bus has a live
// connection to a remote authority.
func (s *Session) ClientConnected() bool {
	return s.Client != nil && s.Client.Connected()
}

// HasAuthority reports whether the local process holds authority: it runs
// the server, or it is offline and therefore canonical for its own state.
func (s *Session) HasAuthority() bool {
	return s.ServerRunning() || !s.ClientConnected()
}
