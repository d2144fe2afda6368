package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/events"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
	"github.com/driftsync/driftsync/internal/server"
)

// ChatMessage is the demo client event; real games register their own types
// the same way.
type ChatMessage struct {
	From string
	Text string
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))

	channels := protocol.NewChannels()
	hub := events.NewHub()
	registry := events.NewRegistry(logger)
	events.Register[ChatMessage](registry, hub, channels, protocol.ChannelOrdered)

	session := &events.Session{
		Client: protocol.NewClientBus(),
		Server: protocol.NewServerBus(),
		Events: hub,
		Peers:  entity.NewPeerMap(),
	}

	host := server.New(cfg, logger, registry, session)
	host.OnTick(func(s *events.Session) {
		for _, msg := range events.DrainFromClient[ChatMessage](s.Events) {
			logger.Info("chat",
				log.String("client", string(msg.Client)),
				log.String("from", msg.Event.From),
				log.String("text", msg.Event.Text),
			)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("host stopped", log.Err(err))
		os.Exit(1)
	}
}
