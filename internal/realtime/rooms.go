// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"sync"

	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/metrics"
)

// Room key constructors. Room names are plain strings; the prefix encodes
// the grouping dimension so operation IDs can never collide with roles or
// user IDs.
func UserRoom(principalID string) string   { return "user:" + principalID }
func RoleRoom(role auth.Role) string       { return "role:" + string(role) }
func TierRoom(tier auth.SecurityTier) string {
	return "tier:" + string(tier)
}
func OperationRoom(operationID string) string { return "operation:" + operationID }

// RoomManager owns all room membership state. It keeps a bidirectional
// index so leave-all on disconnect is O(rooms joined) rather than a scan
// of every room. Rooms are created lazily on first join and removed
// eagerly when the last member leaves.
type RoomManager struct {
	mu        sync.RWMutex
	rooms     map[string]map[ConnID]struct{}
	connRooms map[ConnID]map[string]struct{}
}

// NewRoomManager creates an empty room manager.
func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:     make(map[string]map[ConnID]struct{}),
		connRooms: make(map[ConnID]map[string]struct{}),
	}
}

// Join adds a connection to a room, creating the room if needed. Returns
// true if the connection was not already a member.
func (m *RoomManager) Join(room string, id ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.rooms[room]
	if !ok {
		members = make(map[ConnID]struct{})
		m.rooms[room] = members
		metrics.ActiveRooms.Set(float64(len(m.rooms)))
	}
	if _, joined := members[id]; joined {
		return false
	}
	members[id] = struct{}{}

	if _, ok := m.connRooms[id]; !ok {
		m.connRooms[id] = make(map[string]struct{})
	}
	m.connRooms[id][room] = struct{}{}
	return true
}

// Leave removes a connection from a room. Returns true if the connection
// was a member. The room is deleted when its last member leaves.
func (m *RoomManager) Leave(room string, id ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(room, id)
}

func (m *RoomManager) leaveLocked(room string, id ConnID) bool {
	members, ok := m.rooms[room]
	if !ok {
		return false
	}
	if _, joined := members[id]; !joined {
		return false
	}
	delete(members, id)
	if len(members) == 0 {
		delete(m.rooms, room)
		metrics.ActiveRooms.Set(float64(len(m.rooms)))
	}
	if rooms, ok := m.connRooms[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(m.connRooms, id)
		}
	}
	return true
}

// LeaveAll removes a connection from every room it belongs to and returns
// the rooms it left.
func (m *RoomManager) LeaveAll(id ConnID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms, ok := m.connRooms[id]
	if !ok {
		return nil
	}
	left := make([]string, 0, len(rooms))
	for room := range rooms {
		left = append(left, room)
		m.leaveLocked(room, id)
	}
	return left
}

// MembersOf returns a snapshot of the connections in a room.
func (m *RoomManager) MembersOf(room string) []ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.rooms[room]
	if !ok {
		return nil
	}
	out := make([]ConnID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// Occupancy returns the number of connections in a room.
func (m *RoomManager) Occupancy(room string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}

// IsMember reports whether the connection is in the room.
func (m *RoomManager) IsMember(room string, id ConnID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[room][id]
	return ok
}

// RoomsOf returns a snapshot of the rooms a connection belongs to.
func (m *RoomManager) RoomsOf(id ConnID) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms, ok := m.connRooms[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rooms))
	for room := range rooms {
		out = append(out, room)
	}
	return out
}

// RoomCount returns the number of rooms with at least one member.
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
