// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package realtime implements the coordination layer: the connection
// registry, room membership, event routing with permission gating, and
// liveness monitoring for many concurrently connected, role- and
// permission-scoped clients.
//
// Ownership is strict: the Registry exclusively owns the connection set and
// the RoomManager exclusively owns room membership. Every other component
// (Router, Liveness, Hub) reads and mutates that state only through their
// public methods, which form the minimal critical-section surface.
//
// Per-connection message order is preserved end to end: each connection's
// read pump calls Router.Handle synchronously, so receipt order equals
// processing order equals broadcast order for that sender. No ordering is
// guaranteed across senders.
package realtime
