// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/abusallam/tacops-realtime/internal/audit"
	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/metrics"
)

// LifecycleListener observes connection admission and removal. Connected
// runs before Admit returns, so default room joins complete before the
// connection's first client-issued message is processed. Disconnected runs
// exactly once per removed connection.
type LifecycleListener interface {
	Connected(conn *Connection)
	Disconnected(conn *Connection)
}

// Registry exclusively owns the set of live connections. All other
// components access connection state through its methods.
type Registry struct {
	resolver auth.Resolver
	auditLog *audit.Logger

	mu          sync.RWMutex
	byID        map[ConnID]*Connection
	byPrincipal map[string]map[ConnID]*Connection

	listenerMu sync.RWMutex
	listeners  []LifecycleListener
}

// NewRegistry creates a connection registry using the given credential
// resolver. auditLog may be nil.
func NewRegistry(resolver auth.Resolver, auditLog *audit.Logger) *Registry {
	return &Registry{
		resolver:    resolver,
		auditLog:    auditLog,
		byID:        make(map[ConnID]*Connection),
		byPrincipal: make(map[string]map[ConnID]*Connection),
	}
}

// AddListener registers a lifecycle listener. Must be called during wiring,
// before connections are admitted.
func (r *Registry) AddListener(l LifecycleListener) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Admit resolves the credential exactly once and, on success, creates and
// indexes a Connection. On failure the caller must close the transport;
// no registry state was mutated.
func (r *Registry) Admit(ctx context.Context, credential string, transport Transport) (*Connection, error) {
	principal, err := r.resolver.Verify(ctx, credential)
	if err != nil {
		metrics.ConnectionsTotal.WithLabelValues("auth_failed").Inc()
		r.auditLog.Record(&audit.Event{
			Type:       audit.EventTypeAuthFailure,
			Severity:   audit.SeverityWarning,
			RemoteAddr: transport.RemoteAddr(),
			Detail:     map[string]string{"reason": err.Error()},
		})
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	conn := newConnection(principal, transport)

	r.mu.Lock()
	r.byID[conn.ID()] = conn
	if _, ok := r.byPrincipal[principal.ID]; !ok {
		r.byPrincipal[principal.ID] = make(map[ConnID]*Connection)
	}
	r.byPrincipal[principal.ID][conn.ID()] = conn
	total := len(r.byID)
	r.mu.Unlock()

	metrics.ConnectionsTotal.WithLabelValues("admitted").Inc()
	metrics.ActiveConnections.Set(float64(total))

	r.auditLog.Record(&audit.Event{
		Type:         audit.EventTypeConnected,
		PrincipalID:  principal.ID,
		Username:     principal.Username,
		ConnectionID: string(conn.ID()),
		RemoteAddr:   transport.RemoteAddr(),
	})
	logging.Info().
		Str("connection_id", string(conn.ID())).
		Str("username", principal.Username).
		Str("role", string(principal.Role)).
		Int("total_connections", total).
		Msg("connection admitted")

	for _, l := range r.snapshotListeners() {
		l.Connected(conn)
	}

	return conn, nil
}

// Remove deregisters a connection. Idempotent: removing an unknown
// connection is a no-op.
func (r *Registry) Remove(id ConnID) {
	r.mu.Lock()
	conn, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, id)
	principalID := conn.Principal().ID
	if conns, ok := r.byPrincipal[principalID]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(r.byPrincipal, principalID)
		}
	}
	total := len(r.byID)
	r.mu.Unlock()

	metrics.ActiveConnections.Set(float64(total))

	r.auditLog.Record(&audit.Event{
		Type:         audit.EventTypeDisconnected,
		PrincipalID:  principalID,
		Username:     conn.Principal().Username,
		ConnectionID: string(id),
	})
	logging.Info().
		Str("connection_id", string(id)).
		Str("username", conn.Principal().Username).
		Int("total_connections", total).
		Msg("connection removed")

	for _, l := range r.snapshotListeners() {
		l.Disconnected(conn)
	}
}

// Get returns the connection with the given id.
func (r *Registry) Get(id ConnID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byID[id]
	return conn, ok
}

// ConnectionsForPrincipal returns every live connection owned by the
// principal.
func (r *Registry) ConnectionsForPrincipal(principalID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns, ok := r.byPrincipal[principalID]
	if !ok {
		return nil
	}
	out := make([]*Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Connection, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) snapshotListeners() []LifecycleListener {
	r.listenerMu.RLock()
	defer r.listenerMu.RUnlock()
	return append([]LifecycleListener(nil), r.listeners...)
}
