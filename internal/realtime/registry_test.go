// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"errors"
	"testing"
)

func TestAdmitAndRemove(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.admit(t, userPrincipal("u1", "alice"))

	reg := env.hub.Registry()
	if reg.Count() != 1 {
		t.Fatalf("expected 1 connection, got %d", reg.Count())
	}
	if _, ok := reg.Get(conn.ID()); !ok {
		t.Fatal("connection should be retrievable by id")
	}

	reg.Remove(conn.ID())
	if reg.Count() != 0 {
		t.Errorf("expected 0 connections after remove, got %d", reg.Count())
	}
	if _, ok := reg.Get(conn.ID()); ok {
		t.Error("removed connection should not be retrievable")
	}

	// Removing again must be a no-op.
	reg.Remove(conn.ID())
	if reg.Count() != 0 {
		t.Errorf("idempotent remove changed count to %d", reg.Count())
	}
}

func TestAdmitRejectsBadCredential(t *testing.T) {
	env := newTestEnv(t)
	transport := &fakeTransport{}

	_, err := env.hub.Authenticate(context.Background(), "no-such-credential", transport)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if env.hub.Registry().Count() != 0 {
		t.Error("failed authentication must not admit a connection")
	}
	if env.hub.Rooms().RoomCount() != 0 {
		t.Error("failed authentication must not create rooms")
	}
}

func TestMultiDevicePrincipal(t *testing.T) {
	env := newTestEnv(t)
	p := userPrincipal("u1", "alice")

	c1, _ := env.admit(t, p)
	c2, _ := env.admit(t, p)

	conns := env.hub.Registry().ConnectionsForPrincipal("u1")
	if len(conns) != 2 {
		t.Fatalf("expected 2 connections for principal, got %d", len(conns))
	}

	env.hub.Registry().Remove(c1.ID())
	conns = env.hub.Registry().ConnectionsForPrincipal("u1")
	if len(conns) != 1 || conns[0].ID() != c2.ID() {
		t.Errorf("expected only the second connection to remain, got %d", len(conns))
	}

	env.hub.Registry().Remove(c2.ID())
	if got := env.hub.Registry().ConnectionsForPrincipal("u1"); len(got) != 0 {
		t.Errorf("expected no connections, got %d", len(got))
	}
}

func TestDefaultRoomsJoinedOnAdmit(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.admit(t, userPrincipal("u1", "alice"))

	rooms := env.hub.Rooms().RoomsOf(conn.ID())
	want := map[string]bool{
		"user:u1":       false,
		"role:user":     false,
		"tier:civilian": false,
	}
	for _, room := range rooms {
		if _, ok := want[room]; ok {
			want[room] = true
		}
	}
	for room, seen := range want {
		if !seen {
			t.Errorf("default room %s not joined", room)
		}
	}
}

func TestDisconnectCleansRooms(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.admit(t, userPrincipal("u1", "alice"))
	env.hub.Rooms().Join(OperationRoom("ops-1"), conn.ID())

	env.hub.Disconnect(conn.ID())

	if got := env.hub.Rooms().RoomsOf(conn.ID()); len(got) != 0 {
		t.Errorf("disconnected connection still in rooms %v", got)
	}
	if env.hub.Rooms().RoomCount() != 0 {
		t.Errorf("expected all rooms removed, count=%d", env.hub.Rooms().RoomCount())
	}
}
