package protocol

import (
	"github.com/driftsync/driftsync/internal/core/observability/log"
)

// MemoryLink shuttles frames between a client bus and a server bus in the
// same process. Used by tests and by a listen-server host that wants a real
// transport round trip without sockets. Frames still go through the wire
// codec so the path matches the networked backends.
type MemoryLink struct {
	id     ClientID
	client *ClientBus
	server *ServerBus
	logger log.Log
}

func NewMemoryLink(id ClientID, client *ClientBus, server *ServerBus, logger log.Log) *MemoryLink {
	return &MemoryLink{id: id, client: client, server: server, logger: logger}
}

// Flush moves every queued client message to the server side. Corrupt frames
// cannot happen on this path, but decode errors are still handled the same
// way the networked backends handle them.
func (l *MemoryLink) Flush() {
	for _, msg := range l.client.DrainSent() {
		channel, payload, err := DecodeFrame(EncodeFrame(msg.Channel, msg.Payload))
		if err != nil {
			l.logger.Warn("dropping frame on loopback", log.Err(err))
			continue
		}
		l.server.Insert(channel, l.id, payload)
	}
}

// Connect marks both ends live.
func (l *MemoryLink) Connect() {
	l.server.SetRunning(true)
	l.client.SetState(StateConnected)
}

// Disconnect marks the client end dead; server keeps running.
func (l *MemoryLink) Disconnect() {
	l.client.SetState(StateDisconnected)
}
