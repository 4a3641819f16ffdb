// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package audit records security-relevant events from the coordination
// layer: authentication outcomes, authorization denials and connection
// lifecycle. Recording is best-effort and never blocks the caller.
package audit

import (
	"context"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventTypeAuthSuccess EventType = "auth.success"
	EventTypeAuthFailure EventType = "auth.failure"

	// Authorization events
	EventTypeAuthzDenied EventType = "authz.denied"

	// Connection lifecycle events
	EventTypeConnected    EventType = "connection.connected"
	EventTypeDisconnected EventType = "connection.disconnected"
	EventTypeReaped       EventType = "connection.reaped"

	// Room membership events
	EventTypeRoomJoined EventType = "room.joined"
	EventTypeRoomLeft   EventType = "room.left"

	// Emergency events
	EventTypeEmergencyRaised EventType = "emergency.raised"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Event represents one security audit event.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Timestamp when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// Severity of the event.
	Severity Severity `json:"severity"`

	// PrincipalID identifies the acting principal, when known.
	PrincipalID string `json:"principalId,omitempty"`

	// Username of the acting principal, when known.
	Username string `json:"username,omitempty"`

	// ConnectionID of the connection involved, when applicable.
	ConnectionID string `json:"connectionId,omitempty"`

	// RemoteAddr of the transport, when applicable.
	RemoteAddr string `json:"remoteAddr,omitempty"`

	// Detail carries event-specific context (event tag, room id, reason).
	Detail map[string]string `json:"detail,omitempty"`
}

// Store persists audit events.
type Store interface {
	// Save persists one event.
	Save(ctx context.Context, event *Event) error

	// Query returns the most recent events of the given type, newest
	// first. An empty type matches all events.
	Query(ctx context.Context, eventType EventType, limit int) ([]Event, error)
}
