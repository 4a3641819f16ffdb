// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package audit

import (
	"context"
	"testing"
)

func TestLoggerRecordsToStore(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 16})

	logger.Record(&Event{
		Type:        EventTypeConnected,
		PrincipalID: "u1",
		Username:    "alice",
	})
	logger.Record(&Event{
		Type:     EventTypeAuthFailure,
		Severity: SeverityWarning,
	})

	// Stop drains the buffer, so every recorded event is in the store.
	logger.Stop()

	events, err := store.Query(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.ID == "" {
			t.Error("event id not assigned")
		}
		if ev.Timestamp.IsZero() {
			t.Error("event timestamp not assigned")
		}
	}

	failures, err := store.Query(context.Background(), EventTypeAuthFailure, 10)
	if err != nil {
		t.Fatalf("query by type: %v", err)
	}
	if len(failures) != 1 || failures[0].Severity != SeverityWarning {
		t.Errorf("type filter returned %d events", len(failures))
	}
}

func TestDisabledLoggerDropsEverything(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: false, BufferSize: 16})

	logger.Record(&Event{Type: EventTypeConnected})
	logger.Stop()

	if store.Len() != 0 {
		t.Errorf("disabled logger wrote %d events", store.Len())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	// Must not panic.
	logger.Record(&Event{Type: EventTypeConnected})
}

func TestMemoryStoreBounded(t *testing.T) {
	store := NewMemoryStore(10)
	for i := 0; i < 25; i++ {
		if err := store.Save(context.Background(), &Event{Type: EventTypeConnected}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if store.Len() > 10 {
		t.Errorf("store exceeded its cap: %d", store.Len())
	}
}
