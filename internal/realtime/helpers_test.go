// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/abusallam/tacops-realtime/internal/auth"
)

// fakeTransport records everything delivered to it.
type fakeTransport struct {
	mu        sync.Mutex
	delivered []Envelope
	closed    bool
	reject    bool
}

func (f *fakeTransport) Deliver(env Envelope) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject || f.closed {
		return false
	}
	f.delivered = append(f.delivered, env)
	return true
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) RemoteAddr() string { return "127.0.0.1:0" }

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// envelopes returns all delivered envelopes with the given tag.
func (f *fakeTransport) envelopes(tag string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, env := range f.delivered {
		if env.Type == tag {
			out = append(out, env)
		}
	}
	return out
}

func (f *fakeTransport) count(tag string) int {
	return len(f.envelopes(tag))
}

// recordingSink captures persist handoffs.
type recordingSink struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	tag     string
	payload []byte
}

func (s *recordingSink) Publish(tag string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, publishedEvent{tag: tag, payload: payload})
}

func (s *recordingSink) forTag(tag string) []publishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []publishedEvent
	for _, p := range s.published {
		if p.tag == tag {
			out = append(out, p)
		}
	}
	return out
}

// testEnv bundles a hub with its resolver and sink for router tests.
type testEnv struct {
	hub      *Hub
	resolver *auth.StaticResolver
	sink     *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resolver := auth.NewStaticResolver()
	sink := &recordingSink{}
	hub := NewHub(resolver, auth.SetChecker{}, sink, nil)
	return &testEnv{hub: hub, resolver: resolver, sink: sink}
}

// admit registers a credential for the principal and connects one device.
func (e *testEnv) admit(t *testing.T, p *auth.Principal) (*Connection, *fakeTransport) {
	t.Helper()
	cred := "cred-" + p.ID
	e.resolver.Register(cred, p)

	transport := &fakeTransport{}
	conn, err := e.hub.Authenticate(context.Background(), cred, transport)
	if err != nil {
		t.Fatalf("authenticate %s: %v", p.Username, err)
	}
	return conn, transport
}

func rawPayload(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

// decodeData unmarshals an envelope's data into a map.
func decodeData(t *testing.T, env Envelope) map[string]any {
	t.Helper()
	fields := make(map[string]any)
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("unmarshal envelope data: %v", err)
	}
	return fields
}

func adminPrincipal(id, username string) *auth.Principal {
	return &auth.Principal{
		ID:           id,
		Username:     username,
		Role:         auth.RoleAdmin,
		SecurityTier: auth.TierGovernment,
		Permissions: []string{
			auth.PermReadOperations,
			auth.PermUpdateOperations,
			auth.PermCreateEmergencies,
			auth.PermReadAssets,
			auth.PermSystemMonitoring,
		},
	}
}

func userPrincipal(id, username string, permissions ...string) *auth.Principal {
	return &auth.Principal{
		ID:           id,
		Username:     username,
		Role:         auth.RoleUser,
		SecurityTier: auth.TierCivilian,
		Permissions:  permissions,
	}
}
