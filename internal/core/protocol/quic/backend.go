// Package quic pumps replication bus traffic over QUIC.
//
// Each message is carried on its own unidirectional-style short stream:
// the sender writes one frame and closes, the receiver reads to EOF. Stream
// ordering is not relied on, which matches the unreliable-channel semantics
// the dispatch core is built around.
package quic

import (
	"context"
	"crypto/tls"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

const nextProto = "driftsync-repl"

// Server accepts QUIC clients and feeds their frames into a ServerBus.
type Server struct {
	bus    *protocol.ServerBus
	logger log.Log
	tls    *tls.Config
}

func NewServer(bus *protocol.ServerBus, tlsConfig *tls.Config, logger log.Log) *Server {
	cfg := tlsConfig.Clone()
	cfg.NextProtos = append(cfg.NextProtos, nextProto)
	return &Server{bus: bus, logger: logger, tls: cfg}
}

// ListenAndServe accepts clients on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := quic.ListenAddr(addr, s.tls, &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	})
	if err != nil {
		return err
	}
	defer func() { _ = listener.Close() }()

	s.bus.SetRunning(true)
	defer s.bus.SetRunning(false)

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		client := protocol.ClientID(uuid.NewString())
		s.logger.Info("client connected",
			log.String("client", string(client)),
			log.String("remote", conn.RemoteAddr().String()),
		)
		go s.serveConn(ctx, client, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, client protocol.ClientID, conn quic.Connection) {
	defer s.logger.Info("client disconnected", log.String("client", string(client)))
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		go s.readStream(client, stream)
	}
}

func (s *Server) readStream(client protocol.ClientID, stream quic.Stream) {
	data, err := io.ReadAll(stream)
	if err != nil {
		s.logger.Warn("stream read failed",
			log.String("client", string(client)),
			log.Err(err),
		)
		return
	}
	channel, payload, err := protocol.DecodeFrame(data)
	if err != nil {
		s.logger.Warn("dropping frame",
			log.String("client", string(client)),
			log.Err(err),
		)
		return
	}
	s.bus.Insert(channel, client, payload)
}

// Client connects a ClientBus to a remote server over QUIC.
type Client struct {
	bus    *protocol.ClientBus
	logger log.Log
	conn   quic.Connection
	flush  time.Duration
}

// Dial connects to a server and marks the bus connected.
func Dial(ctx context.Context, addr string, tlsConfig *tls.Config, bus *protocol.ClientBus, logger log.Log) (*Client, error) {
	cfg := tlsConfig.Clone()
	cfg.NextProtos = append(cfg.NextProtos, nextProto)

	bus.SetState(protocol.StateConnecting)
	conn, err := quic.DialAddr(ctx, addr, cfg, &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	})
	if err != nil {
		bus.SetState(protocol.StateDisconnected)
		return nil, err
	}
	bus.SetState(protocol.StateConnected)
	return &Client{bus: bus, logger: logger, conn: conn, flush: 10 * time.Millisecond}, nil
}

// Run pumps queued bus messages, one short stream per message, until ctx is
// cancelled or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	defer func() {
		c.bus.SetState(protocol.StateDisconnected)
		_ = c.conn.CloseWithError(0, "client shutdown")
	}()

	ticker := time.NewTicker(c.flush)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, msg := range c.bus.DrainSent() {
				if err := c.writeFrame(ctx, msg); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Client) writeFrame(ctx context.Context, msg protocol.Outgoing) error {
	stream, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return err
	}
	if _, err = stream.Write(protocol.EncodeFrame(msg.Channel, msg.Payload)); err != nil {
		_ = stream.Close()
		return err
	}
	return stream.Close()
}
