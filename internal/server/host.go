// Package server wires the replication core to a transport and drives the
// network tick loop. It is the process-level host; the dispatch logic lives
// in internal/core.
package server

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/events"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol/quic"
	"github.com/driftsync/driftsync/internal/core/protocol/websocket"
)

// System is a callback run after the event phases each tick, typically to
// consume FromClient envelopes.
type System func(*events.Session)

// Host owns the session, the scheduler and the transport backend for one
// process.
type Host struct {
	cfg       config.Config
	logger    log.Log
	session   *events.Session
	scheduler *events.Scheduler
	systems   []System
}

// New builds a host for the configured mode. Registration (markers, command
// functions, event types) must be finished before the first tick; the host
// does not guard against late registration.
func New(cfg config.Config, logger log.Log, registry *events.Registry, session *events.Session) *Host {
	return &Host{
		cfg:       cfg,
		logger:    logger,
		session:   session,
		scheduler: events.NewScheduler(registry),
	}
}

// OnTick appends a per-tick system. Setup-time only.
func (h *Host) OnTick(system System) {
	h.systems = append(h.systems, system)
}

// Run starts the transport for the configured mode and drives the tick loop
// until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	switch h.cfg.Mode {
	case config.ModeListenServer:
		h.session.Server.SetRunning(true)

	case config.ModeServer:
		group.Go(func() error {
			return h.listen(ctx)
		})

	case config.ModeClient:
		client, err := h.dial(ctx)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return client(ctx)
		})
	}

	group.Go(func() error {
		return h.tickLoop(ctx)
	})
	return group.Wait()
}

func (h *Host) tickLoop(ctx context.Context) error {
	h.logger.Info("tick loop started",
		log.String("mode", string(h.cfg.Mode)),
		log.Int("tick_rate", h.cfg.TickRate),
	)
	ticker := time.NewTicker(h.cfg.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.scheduler.RunTick(h.session)
			for _, system := range h.systems {
				system(h.session)
			}
		}
	}
}

func (h *Host) listen(ctx context.Context) error {
	switch h.cfg.Transport {
	case config.TransportQUIC:
		tlsConfig, err := selfSignedTLSConfig()
		if err != nil {
			return err
		}
		return quic.NewServer(h.session.Server, tlsConfig, h.logger).ListenAndServe(ctx, h.cfg.ListenAddr)
	default:
		return websocket.NewServer(h.session.Server, h.logger).ListenAndServe(ctx, h.cfg.ListenAddr)
	}
}

func (h *Host) dial(ctx context.Context) (func(context.Context) error, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch h.cfg.Transport {
	case config.TransportQUIC:
		tlsConfig, err := selfSignedTLSConfig()
		if err != nil {
			return nil, err
		}
		tlsConfig.InsecureSkipVerify = true
		client, err := quic.Dial(dialCtx, h.cfg.ServerAddr, tlsConfig, h.session.Client, h.logger)
		if err != nil {
			return nil, err
		}
		return client.Run, nil
	default:
		client, err := websocket.Dial(dialCtx, h.cfg.ServerAddr, h.session.Client, h.logger)
		if err != nil {
			return nil, err
		}
		return client.Run, nil
	}
}
