// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package persist

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startWriter(t *testing.T, store Store) *Writer {
	t.Helper()
	w := NewWriter(store, Options{
		QueueSize:        64,
		BreakerThreshold: 3,
		BreakerTimeout:   time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
		<-done
	})

	// Give the subscriber a moment to attach before tests publish.
	time.Sleep(50 * time.Millisecond)
	return w
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWriterDrainsToStore(t *testing.T) {
	store := NewMemoryStore()
	w := startWriter(t, store)

	w.Publish("chat_message", []byte(`{"text":"radio check","senderId":"u1"}`))
	w.Publish("emergency_alert", []byte(`{"description":"fire"}`))

	if !waitFor(t, func() bool {
		return store.Count("chat_message") == 1 && store.Count("emergency_alert") == 1
	}) {
		t.Fatalf("writes not drained: chat=%d emergency=%d",
			store.Count("chat_message"), store.Count("emergency_alert"))
	}

	recs := store.Records("chat_message")
	if recs[0].Tag != "chat_message" || len(recs[0].Payload) == 0 {
		t.Errorf("record not populated: %+v", recs[0])
	}
	if recs[0].ID == "" {
		t.Error("record should carry an id")
	}
}

func TestWriterUnknownTagDropped(t *testing.T) {
	store := NewMemoryStore()
	w := startWriter(t, store)

	w.Publish("no_such_tag", []byte(`{}`))
	w.Publish("chat_message", []byte(`{"text":"after"}`))

	if !waitFor(t, func() bool { return store.Count("chat_message") == 1 }) {
		t.Fatal("writer stopped draining after unknown tag")
	}
	if got := store.Count("no_such_tag"); got != 0 {
		t.Errorf("unknown tag written %d times", got)
	}
}

// failingStore rejects chat writes and accepts everything else.
type failingStore struct {
	*MemoryStore
}

func (s *failingStore) SaveChatMessage(context.Context, *Record) error {
	return errors.New("disk on fire")
}

func TestWriterSurvivesStoreFailure(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	w := startWriter(t, store)

	// Publish must not surface the failure to the caller.
	w.Publish("chat_message", []byte(`{"text":"lost"}`))
	w.Publish("task_update", []byte(`{"taskId":"t1"}`))

	if !waitFor(t, func() bool { return store.Count("task_update") == 1 }) {
		t.Fatal("failure on one tag blocked writes for other tags")
	}
	if got := store.Count("chat_message"); got != 0 {
		t.Errorf("failed write recorded %d times", got)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	w := startWriter(t, store)

	for range 5 {
		w.Publish("chat_message", []byte(`{"text":"x"}`))
	}
	// Writes after the breaker opens are shed without reaching the store.
	w.Publish("task_update", []byte(`{"taskId":"t1"}`))

	if !waitFor(t, func() bool { return w.breaker.State().String() != "closed" }) {
		t.Errorf("breaker still %s after consecutive failures", w.breaker.State())
	}
}
