// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package authz

import (
	"github.com/abusallam/tacops-realtime/internal/auth"
)

// Checker implements auth.PermissionChecker by consulting the principal's
// explicit permission set first and falling back to the Casbin role policy.
type Checker struct {
	enforcer *Enforcer
}

// compile-time check
var _ auth.PermissionChecker = (*Checker)(nil)

// NewChecker creates a permission checker backed by the given enforcer.
func NewChecker(enforcer *Enforcer) *Checker {
	return &Checker{enforcer: enforcer}
}

// HasPermission reports whether the principal satisfies the named permission.
func (c *Checker) HasPermission(p *auth.Principal, permission string) bool {
	if p == nil {
		return false
	}
	if p.HasExplicitPermission(permission) {
		return true
	}
	return c.enforcer.RoleHasPermission(string(p.Role), permission)
}

// HasAnyPermission reports whether the principal satisfies at least one of
// the named permissions.
func (c *Checker) HasAnyPermission(p *auth.Principal, permissions ...string) bool {
	for _, perm := range permissions {
		if c.HasPermission(p, perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the principal satisfies every named
// permission.
func (c *Checker) HasAllPermissions(p *auth.Principal, permissions ...string) bool {
	for _, perm := range permissions {
		if !c.HasPermission(p, perm) {
			return false
		}
	}
	return true
}
