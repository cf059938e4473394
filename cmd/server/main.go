// Command server is the Warlock room-runtime process entrypoint: it
// loads the catalog and configuration, wires the registry and bus, and
// serves the read-only catalog HTTP surface (spec §6.2) while the
// registry's rooms run on their own worker goroutines. The actual
// inbound/outbound message-bus transport (spec §6.1) plugs into
// bus.Subscriber; this binary does not pick one, matching the "wire-
// agnostic" framing spec §6.1 describes.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/covenhold/warlock/internal/bus"
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/config"
	"github.com/covenhold/warlock/internal/httpapi"
	"github.com/covenhold/warlock/internal/registry"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/covenhold/warlock/internal/room"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfgPath := os.Getenv("WARLOCK_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	eventBus := bus.New(logger)
	reg := registry.New(registry.Config{
		MaxRooms:            cfg.Registry.MaxRooms,
		MaxConcurrentCreate: int64(cfg.Registry.MaxConcurrentCreate),
		Room: room.Config{
			MinPlayers:         cfg.Room.MinPlayers,
			MaxPlayers:         cfg.Room.MaxPlayers,
			IdleTimeout:        cfg.Room.IdleTimeout,
			ReconnectGrace:     cfg.Room.ReconnectGrace,
			SubmissionDeadline: cfg.Room.SubmissionDeadline,
		},
	}, cat, eventBus, logger, func() rng.Source { return rng.CryptoSource{} })
	defer reg.Shutdown()

	handler := httpapi.NewHandler(cat, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: httpapi.NewRouter(handler),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("catalog http surface listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("http server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped", zap.Int("roomsAtShutdown", reg.Count()))
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
