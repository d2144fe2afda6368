package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how the host participates in a session.
type Mode string

const (
	// ModeListenServer runs authority and client in one process, with the
	// client side looped back in memory.
	ModeListenServer Mode = "listen-server"
	// ModeServer runs the authority only.
	ModeServer Mode = "server"
	// ModeClient connects to a remote authority.
	ModeClient Mode = "client"
)

// Transport selects the transport backend for networked modes.
type Transport string

const (
	TransportWebsocket Transport = "websocket"
	TransportQUIC      Transport = "quic"
)

// Config is the host configuration, loaded from YAML.
type Config struct {
	Mode      Mode      `yaml:"mode"`
	Transport Transport `yaml:"transport"`

	ListenAddr string `yaml:"listen_addr"`
	ServerAddr string `yaml:"server_addr"`

	TickRate int    `yaml:"tick_rate"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is supplied: a
// loopback listen server at 30 ticks per second.
func Default() Config {
	return Config{
		Mode:       ModeListenServer,
		Transport:  TransportWebsocket,
		ListenAddr: ":7350",
		ServerAddr: "ws://127.0.0.1:7350",
		TickRate:   30,
		LogLevel:   "info",
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the host cannot run.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeListenServer, ModeServer, ModeClient:
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	switch c.Transport {
	case TransportWebsocket, TransportQUIC:
	default:
		return fmt.Errorf("invalid transport %q", c.Transport)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	return nil
}

// TickInterval converts the configured rate to a tick period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
