// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/locrelay/internal/api"
	"github.com/tomtom215/locrelay/internal/config"
	"github.com/tomtom215/locrelay/internal/events"
	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/media"
	"github.com/tomtom215/locrelay/internal/presence"
	"github.com/tomtom215/locrelay/internal/store"
	"github.com/tomtom215/locrelay/internal/supervisor"
	"github.com/tomtom215/locrelay/internal/supervisor/services"
	ws "github.com/tomtom215/locrelay/internal/websocket"
)

const (
	storeConnectTimeout = 15 * time.Second
	shutdownTimeout     = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Locrelay exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: "locrelay",
	})
	logging.Info().Str("config", cfg.String()).Msg("Starting Locrelay")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, storeConnectTimeout)
	st, err := store.Open(connectCtx, &cfg.Store)
	cancelConnect()
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()
	logging.Info().Str("backend", st.Backend()).Msg("Event store ready")

	registry := events.NewRegistry(st)
	defer registry.Close()

	hub := ws.NewHub(presence.NewRegistry(), registry, ws.Config{
		SendBuffer:   cfg.Relay.ClientSendBuffer,
		InboundRate:  cfg.Relay.InboundRate,
		InboundBurst: cfg.Relay.InboundBurst,
	})
	registry.SetNotifier(hub)

	mediaStore, err := media.Open(&cfg.Media, cfg.Server.PublicBaseURL)
	if err != nil {
		return err
	}
	logging.Info().Str("backend", mediaStore.Backend()).Msg("Media store ready")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(cfg, hub, registry, st, mediaStore)
	router := api.NewRouter(handler, cfg).SetupChi()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return err
	}

	tree.AddDataService(services.NewEventReconcileService(registry, cfg.Relay.ReconcileInterval))
	tree.AddDataService(services.NewEventSweepService(registry, cfg.Relay.SweepInterval))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(func() services.HTTPServer {
		return &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
			IdleTimeout:       120 * time.Second,
		}
	}, shutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree stopped with error")
	}

	if n := tree.LogUnstopped(); n > 0 {
		logging.Warn().Int("count", n).Msg("Services failed to stop within timeout")
	}

	logging.Info().Msg("Locrelay stopped")
	return nil
}
