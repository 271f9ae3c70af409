package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string
	PostgresDSN  string // empty runs the in-memory recorder
	TickInterval time.Duration
	GracePeriod  time.Duration
	AllowlistTTL time.Duration
	MaxPlayers   int
}

// Load reads .env when present, then the environment, falling back to
// defaults per field.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:   getString("LISTEN_ADDR", ":8080"),
		PostgresDSN:  getString("POSTGRES_DSN", ""),
		TickInterval: getDuration("TICK_INTERVAL", 25*time.Millisecond),
		GracePeriod:  getDuration("GRACE_PERIOD", 2*time.Second),
		AllowlistTTL: getDuration("ALLOWLIST_TTL", 60*time.Second),
		MaxPlayers:   getInt("MAX_PLAYERS", 16),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
