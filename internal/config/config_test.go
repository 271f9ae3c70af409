package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ListenAddr == "" {
		t.Fatalf("listen addr default missing")
	}
	if cfg.TickInterval <= 0 || cfg.GracePeriod <= 0 || cfg.AllowlistTTL <= 0 {
		t.Fatalf("duration defaults missing: %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("GRACE_PERIOD", "5s")
	t.Setenv("MAX_PLAYERS", "32")

	cfg := Load()
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.GracePeriod != 5*time.Second {
		t.Fatalf("grace period = %v", cfg.GracePeriod)
	}
	if cfg.MaxPlayers != 32 {
		t.Fatalf("max players = %d", cfg.MaxPlayers)
	}
}
