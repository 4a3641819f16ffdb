// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package api exposes the HTTP surface: the websocket upgrade endpoint,
// a login endpoint issuing session tokens from the static user table,
// health and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/config"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/realtime"
)

// TokenIssuer mints session tokens for the login endpoint.
type TokenIssuer interface {
	Issue(p *auth.Principal) (string, error)
}

// Server is the HTTP front of the coordination layer.
type Server struct {
	cfg    *config.Config
	hub    *realtime.Hub
	issuer TokenIssuer

	httpServer *http.Server
}

// NewServer wires routes and the underlying http.Server.
func NewServer(cfg *config.Config, hub *realtime.Hub, issuer TokenIssuer) *Server {
	s := &Server{
		cfg:    cfg,
		hub:    hub,
		issuer: issuer,
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(RequestLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.Server.AllowedOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(rateLimiter(s.cfg.Server.RequestsPerMin)).Get("/health", s.handleHealth)

		// Tight limit on login to slow brute forcing of access keys.
		r.With(rateLimiter(10)).Post("/auth/login", s.handleLogin)
	})

	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Serve runs the HTTP server until the context is canceled, then shuts
// down gracefully. Implements suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("http shutdown incomplete, closing")
		_ = s.httpServer.Close()
	}
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *Server) String() string { return "http-server" }
