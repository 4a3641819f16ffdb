// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"time"

	"github.com/abusallam/tacops-realtime/internal/audit"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/metrics"
)

// Liveness reaps connections that have shown no activity past the
// configured timeout. One periodic sweep over the registry bounds the
// overhead at large connection counts; there are no per-connection timers.
type Liveness struct {
	hub      *Hub
	auditLog *audit.Logger
	interval time.Duration
	timeout  time.Duration

	now func() time.Time
}

// NewLiveness creates a liveness monitor. auditLog may be nil.
func NewLiveness(hub *Hub, interval, timeout time.Duration, auditLog *audit.Logger) *Liveness {
	return &Liveness{
		hub:      hub,
		auditLog: auditLog,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Serve runs sweeps until the context is canceled. Implements
// suture.Service.
func (l *Liveness) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", l.interval).
		Dur("timeout", l.timeout).
		Msg("liveness monitor started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Sweep disconnects every connection whose last activity is older than the
// timeout. Reaping is unconditional; the client must reconnect and
// re-authenticate.
func (l *Liveness) Sweep() int {
	cutoff := l.now().Add(-l.timeout)
	reaped := 0

	for _, conn := range l.hub.Registry().All() {
		if conn.LastActivity().After(cutoff) {
			continue
		}
		p := conn.Principal()
		logging.Info().
			Str("connection_id", string(conn.ID())).
			Str("username", p.Username).
			Time("last_activity", conn.LastActivity()).
			Msg("reaping stale connection")

		l.auditLog.Record(&audit.Event{
			Type:         audit.EventTypeReaped,
			PrincipalID:  p.ID,
			Username:     p.Username,
			ConnectionID: string(conn.ID()),
		})

		l.hub.Disconnect(conn.ID())
		conn.Transport().Close()
		metrics.ReapedConnections.Inc()
		reaped++
	}
	return reaped
}

// String names the service in supervisor logs.
func (l *Liveness) String() string { return "realtime-liveness" }
