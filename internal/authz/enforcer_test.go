// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package authz

import (
	"testing"

	"github.com/abusallam/tacops-realtime/internal/auth"
)

func TestRolePermissionPolicy(t *testing.T) {
	enforcer, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}

	tests := []struct {
		role       string
		permission string
		want       bool
	}{
		{"user", auth.PermReadOperations, true},
		{"user", auth.PermUpdateOperations, false},
		{"user", auth.PermCreateEmergencies, false},

		// project_admin inherits user.
		{"project_admin", auth.PermReadOperations, true},
		{"project_admin", auth.PermUpdateOperations, true},
		{"project_admin", auth.PermReadAssets, true},
		{"project_admin", auth.PermSystemMonitoring, false},

		// admin inherits project_admin.
		{"admin", auth.PermReadOperations, true},
		{"admin", auth.PermUpdateOperations, true},
		{"admin", auth.PermCreateEmergencies, true},
		{"admin", auth.PermSystemMonitoring, true},

		// root_admin inherits admin.
		{"root_admin", auth.PermCreateEmergencies, true},
		{"root_admin", auth.PermReadOperations, true},

		// agent has no role-derived grants.
		{"agent", auth.PermReadOperations, false},

		{"unknown_role", auth.PermReadOperations, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := enforcer.RoleHasPermission(tt.role, tt.permission); got != tt.want {
				t.Errorf("RoleHasPermission(%s, %s) = %v, want %v", tt.role, tt.permission, got, tt.want)
			}
		})
	}
}

func TestCheckerExplicitSetOverridesPolicy(t *testing.T) {
	enforcer, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}
	checker := NewChecker(enforcer)

	// The agent role has no grants in the policy; an explicit set still
	// satisfies the check.
	agent := &auth.Principal{
		ID:          "a1",
		Username:    "overwatch",
		Role:        auth.RoleAgent,
		Permissions: []string{auth.PermReadAssets},
	}
	if !checker.HasPermission(agent, auth.PermReadAssets) {
		t.Error("explicit permission should satisfy the check")
	}
	if checker.HasPermission(agent, auth.PermReadOperations) {
		t.Error("agent without explicit grant should be denied")
	}

	// A plain user with an empty explicit set falls back to the policy.
	user := &auth.Principal{ID: "u1", Username: "bob", Role: auth.RoleUser}
	if !checker.HasPermission(user, auth.PermReadOperations) {
		t.Error("role policy should grant READ_OPERATIONS to user")
	}
	if checker.HasPermission(user, auth.PermUpdateOperations) {
		t.Error("role policy must not grant UPDATE_OPERATIONS to user")
	}

	if checker.HasPermission(nil, auth.PermReadOperations) {
		t.Error("nil principal must be denied")
	}

	if !checker.HasAnyPermission(user, auth.PermUpdateOperations, auth.PermReadOperations) {
		t.Error("any-of should match the role-derived grant")
	}
	if checker.HasAllPermissions(user, auth.PermReadOperations, auth.PermUpdateOperations) {
		t.Error("all-of should fail on the missing grant")
	}
}
