// Package websocket pumps replication bus traffic over gorilla/websocket.
//
// Each websocket message carries exactly one wire frame. The backend owns
// the sockets; the replication core only ever sees the buses.
package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

// Server accepts websocket clients and feeds their frames into a ServerBus.
type Server struct {
	bus      *protocol.ServerBus
	logger   log.Log
	upgrader websocket.Upgrader
}

func NewServer(bus *protocol.ServerBus, logger log.Log) *Server {
	return &Server{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ListenAndServe accepts clients on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)

	httpServer := &http.Server{Addr: addr, Handler: mux}
	s.bus.SetRunning(true)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-ctx.Done()
		s.bus.SetRunning(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Err(err))
		return
	}
	client := protocol.ClientID(uuid.NewString())
	s.logger.Info("client connected",
		log.String("client", string(client)),
		log.String("remote", conn.RemoteAddr().String()),
	)
	go s.readLoop(client, conn)
}

func (s *Server) readLoop(client protocol.ClientID, conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
		s.logger.Info("client disconnected", log.String("client", string(client)))
	}()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		channel, payload, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("dropping frame",
				log.String("client", string(client)),
				log.Err(err),
			)
			continue
		}
		s.bus.Insert(channel, client, payload)
	}
}

// Client connects a ClientBus to a remote server.
type Client struct {
	bus    *protocol.ClientBus
	logger log.Log
	conn   *websocket.Conn
	flush  time.Duration
}

// Dial connects to a server and marks the bus connected.
func Dial(ctx context.Context, addr string, bus *protocol.ClientBus, logger log.Log) (*Client, error) {
	bus.SetState(protocol.StateConnecting)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		bus.SetState(protocol.StateDisconnected)
		return nil, err
	}
	bus.SetState(protocol.StateConnected)
	return &Client{bus: bus, logger: logger, conn: conn, flush: 10 * time.Millisecond}, nil
}

// Run pumps queued bus messages onto the socket until ctx is cancelled or
// the connection fails. The bus is marked disconnected on exit.
func (c *Client) Run(ctx context.Context) error {
	defer func() {
		c.bus.SetState(protocol.StateDisconnected)
		_ = c.conn.Close()
	}()

	ticker := time.NewTicker(c.flush)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, msg := range c.bus.DrainSent() {
				frame := protocol.EncodeFrame(msg.Channel, msg.Payload)
				if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					var netErr net.Error
					if errors.As(err, &netErr) && netErr.Timeout() {
						c.logger.Warn("write timeout", log.Err(err))
						continue
					}
					return err
				}
			}
		}
	}
}
