package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/config"
	"github.com/arenalight/arena-server/internal/httpapi"
	"github.com/arenalight/arena-server/internal/hub"
	"github.com/arenalight/arena-server/internal/store"
	"github.com/arenalight/arena-server/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var recorder store.Recorder
	if cfg.PostgresDSN != "" {
		pg, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("opening postgres", zap.Error(err))
		}
		recorder = pg
	} else {
		logger.Warn("no POSTGRES_DSN set, results stay in memory")
		recorder = store.NewMemory()
	}

	ctx := context.Background()
	h := hub.NewHub(ctx, hub.Config{
		Logger:       logger,
		Store:        recorder,
		TickInterval: cfg.TickInterval,
		GracePeriod:  cfg.GracePeriod,
		AllowlistTTL: cfg.AllowlistTTL,
		DefaultSpec:  hub.Spec{Name: hub.DefaultRoomName, MaxPlayers: cfg.MaxPlayers},
	})

	sessions := ws.NewSessions()
	handler := httpapi.SetupRoutes(h, auth.GuestVerifier{}, sessions, logger)

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
