// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"strings"

	"github.com/abusallam/tacops-realtime/internal/audit"
	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/logging"
)

// Hub assembles the coordination layer: the connection registry, the room
// manager and the event router. It is the lifecycle listener that joins
// default rooms on admission and cleans up membership on disconnect.
type Hub struct {
	registry *Registry
	rooms    *RoomManager
	router   *Router
	auditLog *audit.Logger
}

// NewHub wires a hub from its collaborators. sink and auditLog may be nil.
func NewHub(resolver auth.Resolver, checker auth.PermissionChecker, sink EventSink, auditLog *audit.Logger) *Hub {
	h := &Hub{
		registry: NewRegistry(resolver, auditLog),
		rooms:    NewRoomManager(),
		auditLog: auditLog,
	}
	h.router = NewRouter(h.registry, h.rooms, checker, sink, auditLog)
	h.registry.AddListener(h)
	return h
}

// Registry returns the connection registry.
func (h *Hub) Registry() *Registry { return h.registry }

// Rooms returns the room manager.
func (h *Hub) Rooms() *RoomManager { return h.rooms }

// Router returns the event router.
func (h *Hub) Router() *Router { return h.router }

// Authenticate admits a connection. On error the caller owns the transport
// and must close it after delivering auth_error.
func (h *Hub) Authenticate(ctx context.Context, credential string, transport Transport) (*Connection, error) {
	return h.registry.Admit(ctx, credential, transport)
}

// Disconnect removes a connection and its room memberships. Idempotent.
func (h *Hub) Disconnect(id ConnID) {
	h.registry.Remove(id)
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Count()
}

// Connected joins the default rooms. Runs inside Admit, before any
// client-issued message for the connection is processed, so every live
// connection is reachable through at least its own user room.
func (h *Hub) Connected(conn *Connection) {
	p := conn.Principal()
	h.rooms.Join(UserRoom(p.ID), conn.ID())
	h.rooms.Join(RoleRoom(p.Role), conn.ID())
	h.rooms.Join(TierRoom(p.SecurityTier), conn.ID())
}

// Disconnected clears room membership and, when the principal's last
// connection is gone, tells its operation rooms the user left.
func (h *Hub) Disconnected(conn *Connection) {
	p := conn.Principal()
	left := h.rooms.LeaveAll(conn.ID())

	if len(h.registry.ConnectionsForPrincipal(p.ID)) > 0 {
		return
	}
	for _, room := range left {
		opID, ok := strings.CutPrefix(room, "operation:")
		if !ok {
			continue
		}
		notice, err := NewEnvelope(TagUserLeftOperation, map[string]string{
			"principalId": p.ID,
			"username":    p.Username,
			"operationId": opID,
		})
		if err != nil {
			continue
		}
		h.router.deliverTo(h.rooms.MembersOf(room), notice, "")
	}
}

// Serve keeps the hub registered with the supervisor and closes every
// transport on shutdown so clients see a clean disconnect. Implements
// suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	<-ctx.Done()

	conns := h.registry.All()
	logging.Info().Int("connections", len(conns)).Msg("hub shutting down, closing connections")
	for _, conn := range conns {
		h.registry.Remove(conn.ID())
		conn.Transport().Close()
	}
	return ctx.Err()
}

// String names the service in supervisor logs.
func (h *Hub) String() string { return "realtime-hub" }
