// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abusallam/tacops-realtime/internal/auth"
)

// ConnID uniquely identifies one transport-level connection.
type ConnID string

// NewConnID generates a fresh connection ID.
func NewConnID() ConnID {
	return ConnID(uuid.New().String())
}

// Transport is the outbound half of a connection. Deliver must never
// block; it reports false when the message was dropped (buffer full or
// transport closed).
type Transport interface {
	Deliver(env Envelope) bool
	Close()
	RemoteAddr() string
}

// Connection represents one admitted transport-level socket bound to a
// Principal for its lifetime. A principal may own several simultaneous
// connections (multi-device).
type Connection struct {
	id        ConnID
	principal *auth.Principal
	transport Transport

	connectedAt time.Time
	// lastActivity is unix nanoseconds, mutated by the heartbeat handler
	// and on every inbound message. Initialized to connectedAt so a
	// connection that never sends anything is still reapable.
	lastActivity atomic.Int64
}

// newConnection creates an admitted connection.
func newConnection(principal *auth.Principal, transport Transport) *Connection {
	c := &Connection{
		id:          NewConnID(),
		principal:   principal,
		transport:   transport,
		connectedAt: time.Now(),
	}
	c.lastActivity.Store(c.connectedAt.UnixNano())
	return c
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() ConnID { return c.id }

// Principal returns the principal bound to this connection.
func (c *Connection) Principal() *auth.Principal { return c.principal }

// Transport returns the outbound transport.
func (c *Connection) Transport() Transport { return c.transport }

// ConnectedAt returns when the connection was admitted.
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }

// LastActivity returns the last time the connection showed signs of life.
func (c *Connection) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// Touch refreshes the last-activity timestamp.
func (c *Connection) Touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// Deliver sends an envelope to the connection without blocking.
func (c *Connection) Deliver(env Envelope) bool {
	return c.transport.Deliver(env)
}
