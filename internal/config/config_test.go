package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ModeListenServer, cfg.Mode)
	require.Equal(t, time.Second/30, cfg.TickInterval())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "spectator" }},
		{"unknown transport", func(c *Config) { c.Transport = "carrier-pigeon" }},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }},
		{"negative tick rate", func(c *Config) { c.TickRate = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFillsUnsetFromDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "mode: client\nserver_addr: ws://game.example:9000\ntick_rate: 60\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ModeClient, cfg.Mode)
	require.Equal(t, "ws://game.example:9000", cfg.ServerAddr)
	require.Equal(t, 60, cfg.TickRate)
	require.Equal(t, TransportWebsocket, cfg.Transport, "unset fields keep defaults")
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: spectator\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}
