// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"slices"
	"testing"
)

// checkConsistency verifies the bidirectional membership invariant:
// a connection is in a room's member set exactly when the room is in the
// connection's room set.
func checkConsistency(t *testing.T, m *RoomManager, rooms []string, conns []ConnID) {
	t.Helper()
	for _, room := range rooms {
		for _, id := range conns {
			inRoom := slices.Contains(m.MembersOf(room), id)
			hasRoom := slices.Contains(m.RoomsOf(id), room)
			if inRoom != hasRoom {
				t.Errorf("inconsistent membership: conn %s room %s: membersOf=%v roomsOf=%v", id, room, inRoom, hasRoom)
			}
		}
	}
}

func TestRoomMembershipConsistency(t *testing.T) {
	m := NewRoomManager()
	rooms := []string{"operation:1", "operation:2", "role:user"}
	conns := []ConnID{"a", "b", "c"}

	steps := []struct {
		name string
		op   func()
	}{
		{"a joins op1", func() { m.Join("operation:1", "a") }},
		{"b joins op1", func() { m.Join("operation:1", "b") }},
		{"b joins op2", func() { m.Join("operation:2", "b") }},
		{"c joins role", func() { m.Join("role:user", "c") }},
		{"a joins op1 again", func() { m.Join("operation:1", "a") }},
		{"a leaves op1", func() { m.Leave("operation:1", "a") }},
		{"c leaves room it never joined", func() { m.Leave("operation:2", "c") }},
		{"b leaves everything", func() { m.LeaveAll("b") }},
		{"a rejoins op1", func() { m.Join("operation:1", "a") }},
	}

	for _, step := range steps {
		step.op()
		checkConsistency(t, m, rooms, conns)
	}
}

func TestJoinIdempotent(t *testing.T) {
	m := NewRoomManager()

	if !m.Join("operation:1", "a") {
		t.Error("first join should report new membership")
	}
	if m.Join("operation:1", "a") {
		t.Error("second join should be a no-op")
	}
	if got := len(m.MembersOf("operation:1")); got != 1 {
		t.Errorf("expected 1 member, got %d", got)
	}
}

func TestLeaveNonMemberIsNoop(t *testing.T) {
	m := NewRoomManager()
	m.Join("operation:1", "a")

	if m.Leave("operation:1", "b") {
		t.Error("leave of non-member should report false")
	}
	if m.Leave("operation:2", "a") {
		t.Error("leave of unknown room should report false")
	}
	if got := len(m.MembersOf("operation:1")); got != 1 {
		t.Errorf("expected membership unchanged, got %d members", got)
	}
}

func TestEmptyRoomRemoved(t *testing.T) {
	m := NewRoomManager()
	m.Join("operation:1", "a")
	m.Join("operation:1", "b")

	m.Leave("operation:1", "a")
	if m.RoomCount() != 1 {
		t.Errorf("room with remaining member should survive, count=%d", m.RoomCount())
	}

	m.Leave("operation:1", "b")
	if m.RoomCount() != 0 {
		t.Errorf("empty room should be removed, count=%d", m.RoomCount())
	}
}

func TestLeaveAll(t *testing.T) {
	m := NewRoomManager()
	m.Join("operation:1", "a")
	m.Join("operation:2", "a")
	m.Join("role:user", "a")
	m.Join("operation:1", "b")

	left := m.LeaveAll("a")
	if len(left) != 3 {
		t.Fatalf("expected to leave 3 rooms, left %v", left)
	}
	if got := m.RoomsOf("a"); len(got) != 0 {
		t.Errorf("connection should have no rooms, got %v", got)
	}
	if !m.IsMember("operation:1", "b") {
		t.Error("other connections' membership must be untouched")
	}

	if again := m.LeaveAll("a"); len(again) != 0 {
		t.Errorf("second leaveAll should be a no-op, got %v", again)
	}
}

func TestOccupancy(t *testing.T) {
	m := NewRoomManager()
	if m.Occupancy("operation:1") != 0 {
		t.Error("unknown room should have zero occupancy")
	}
	m.Join("operation:1", "a")
	m.Join("operation:1", "b")
	if got := m.Occupancy("operation:1"); got != 2 {
		t.Errorf("expected occupancy 2, got %d", got)
	}
}
