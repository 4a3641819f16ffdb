// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package persist is the durable side-effect writer: stamped event
// payloads are queued after broadcast and drained to a store by a
// background worker. Writes are fire-and-forget; a failure is logged and
// never retracts a delivered broadcast.
package persist

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Record is one denormalized event write.
type Record struct {
	// ID is unique per record.
	ID string `json:"id"`

	// Tag is the event tag the record was written for.
	Tag string `json:"tag"`

	// Timestamp is when the record was queued.
	Timestamp time.Time `json:"timestamp"`

	// Payload is the stamped event payload as broadcast.
	Payload json.RawMessage `json:"payload"`
}

// Store offers one write per persisted event tag. Implementations decide
// layout; callers never read back through this interface.
type Store interface {
	SaveMapAnnotation(ctx context.Context, rec *Record) error
	SaveTaskUpdate(ctx context.Context, rec *Record) error
	SaveTaskVerification(ctx context.Context, rec *Record) error
	SaveEmergencyAlert(ctx context.Context, rec *Record) error
	SaveAssetLocation(ctx context.Context, rec *Record) error
	SaveAssetStatus(ctx context.Context, rec *Record) error
	SaveChatMessage(ctx context.Context, rec *Record) error

	Close() error
}
