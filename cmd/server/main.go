// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package main is the entry point for the TacOps realtime coordination
// server.
//
// The server fans tactical-operation state (map annotations, task
// updates, emergency alerts, asset telemetry, chat) out to role- and
// permission-scoped websocket clients, organized into rooms per
// operation, role, security tier and user. A liveness monitor reaps
// stale connections and a background writer durably records the event
// tags marked for persistence.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml,
//     TACOPS_* environment variables)
//  2. Logging: zerolog, json or console format
//  3. Authorization: Casbin role->permission policy
//  4. Audit: buffered async security audit log
//  5. Persistence: Badger-backed (or in-memory) event store behind a
//     watermill queue and circuit breaker
//  6. Hub: connection registry, room manager, event router
//  7. Supervision: suture tree running hub, liveness, writer and the
//     HTTP server
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/abusallam/tacops-realtime/internal/api"
	"github.com/abusallam/tacops-realtime/internal/audit"
	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/authz"
	"github.com/abusallam/tacops-realtime/internal/config"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/persist"
	"github.com/abusallam/tacops-realtime/internal/realtime"
	"github.com/abusallam/tacops-realtime/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("addr", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Dur("idle_timeout", cfg.Realtime.IdleTimeout).
		Bool("persist", cfg.Persist.Enabled).
		Msg("starting tacops realtime server")

	// Authorization policy for role-derived permissions.
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize authorization policy")
	}
	checker := authz.NewChecker(enforcer)

	// Credential resolver issuing and verifying session tokens.
	resolver, err := auth.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize credential resolver")
	}

	// Security audit trail.
	auditStore := audit.NewMemoryStore(cfg.Audit.MaxEvents)
	auditLog := audit.NewLogger(auditStore, &audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
	})
	defer auditLog.Stop()

	// Durable side-effect writer.
	var writer *persist.Writer
	if cfg.Persist.Enabled {
		var store persist.Store
		if cfg.Persist.Path != "" {
			store, err = persist.NewBadgerStore(cfg.Persist.Path)
			if err != nil {
				logging.Fatal().Err(err).Msg("failed to open event store")
			}
		} else {
			store = persist.NewMemoryStore()
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("error closing event store")
			}
		}()

		writer = persist.NewWriter(store, persist.Options{
			QueueSize:        cfg.Persist.QueueSize,
			BreakerThreshold: cfg.Persist.BreakerThreshold,
			BreakerTimeout:   cfg.Persist.BreakerTimeout,
		})
		defer func() {
			if err := writer.Close(); err != nil {
				logging.Error().Err(err).Msg("error closing persist writer")
			}
		}()
	}

	var sink realtime.EventSink
	if writer != nil {
		sink = writer
	}

	hub := realtime.NewHub(resolver, checker, sink, auditLog)
	liveness := realtime.NewLiveness(hub, cfg.Realtime.SweepInterval, cfg.Realtime.IdleTimeout, auditLog)
	server := api.NewServer(cfg, hub, resolver)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if writer != nil {
		tree.AddRealtimeService(writer)
	}
	tree.AddRealtimeService(hub)
	tree.AddRealtimeService(liveness)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("server stopped")
}
