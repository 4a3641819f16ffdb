// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"testing"
	"time"

	"github.com/abusallam/tacops-realtime/internal/auth"
)

func TestSweepReapsStaleConnections(t *testing.T) {
	env := newTestEnv(t)
	stale, staleT := env.admit(t, userPrincipal("u1", "alice"))
	env.hub.Rooms().Join(OperationRoom("ops-1"), stale.ID())

	liveness := NewLiveness(env.hub, time.Minute, 5*time.Minute, nil)
	liveness.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	reaped := liveness.Sweep()
	if reaped != 1 {
		t.Fatalf("expected 1 reaped connection, got %d", reaped)
	}
	if env.hub.Registry().Count() != 0 {
		t.Error("reaped connection still in registry")
	}
	if got := env.hub.Rooms().RoomsOf(stale.ID()); len(got) != 0 {
		t.Errorf("reaped connection still in rooms %v", got)
	}
	if !staleT.isClosed() {
		t.Error("reaped connection's transport should be closed")
	}
}

func TestSweepSparesActiveConnections(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.admit(t, userPrincipal("u1", "alice"))

	liveness := NewLiveness(env.hub, time.Minute, 5*time.Minute, nil)

	liveness.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if reaped := liveness.Sweep(); reaped != 0 {
		t.Fatalf("connection inside timeout reaped, count=%d", reaped)
	}

	conn.Touch()
	liveness.now = func() time.Time { return time.Now().Add(4 * time.Minute) }
	if reaped := liveness.Sweep(); reaped != 0 {
		t.Fatalf("refreshed connection reaped, count=%d", reaped)
	}
	if env.hub.Registry().Count() != 1 {
		t.Error("active connection should remain registered")
	}
}

func TestSweepUsesAdmissionTimeForSilentConnections(t *testing.T) {
	env := newTestEnv(t)

	// A connection that authenticates and then never sends anything is
	// reapable from its admission instant.
	_, _ = env.admit(t, &auth.Principal{
		ID:           "u1",
		Username:     "quiet",
		Role:         auth.RoleUser,
		SecurityTier: auth.TierCivilian,
	})

	liveness := NewLiveness(env.hub, time.Minute, 5*time.Minute, nil)
	liveness.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	if reaped := liveness.Sweep(); reaped != 1 {
		t.Fatalf("silent connection should be reaped, count=%d", reaped)
	}
}
