// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package auth defines the authenticated identity model and the credential
// resolver that turns an opaque credential into a Principal.
package auth

import "slices"

// Role is the coarse role assigned to a principal.
type Role string

const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleProjectAdmin Role = "project_admin"
	RoleRootAdmin    Role = "root_admin"
	RoleAgent        Role = "agent"
)

// Valid reports whether the role is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleProjectAdmin, RoleRootAdmin, RoleAgent:
		return true
	}
	return false
}

// SecurityTier classifies a principal's clearance level. It gates session
// timeout and cryptographic strictness and is orthogonal to role permissions.
type SecurityTier string

const (
	TierCivilian   SecurityTier = "civilian"
	TierGovernment SecurityTier = "government"
	TierMilitary   SecurityTier = "military"
)

// Valid reports whether the tier is one of the recognized tiers.
func (t SecurityTier) Valid() bool {
	switch t {
	case TierCivilian, TierGovernment, TierMilitary:
		return true
	}
	return false
}

// Permission names checked by the event router.
const (
	PermReadOperations   = "READ_OPERATIONS"
	PermUpdateOperations = "UPDATE_OPERATIONS"
	PermCreateEmergencies = "CREATE_EMERGENCIES"
	PermReadAssets       = "READ_ASSETS"
	PermSystemMonitoring = "SYSTEM_MONITORING"
)

// Principal represents an authenticated identity. It is immutable for the
// lifetime of a connection and re-resolved on reconnect.
type Principal struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Role         Role         `json:"role"`
	SecurityTier SecurityTier `json:"securityTier"`
	Permissions  []string     `json:"permissions,omitempty"`
	SessionID    string       `json:"sessionId,omitempty"`
}

// HasExplicitPermission reports whether the permission appears in the
// principal's explicit permission set. Role-derived permissions are resolved
// by a PermissionChecker, not here.
func (p *Principal) HasExplicitPermission(permission string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Permissions, permission)
}

// Summary returns the fields safe to echo back to the client after
// authentication.
func (p *Principal) Summary() map[string]any {
	return map[string]any{
		"id":           p.ID,
		"username":     p.Username,
		"role":         p.Role,
		"securityTier": p.SecurityTier,
	}
}

// PermissionChecker decides whether a principal satisfies a named permission.
// Implementations may consult the explicit permission set, a role policy, or
// both.
type PermissionChecker interface {
	HasPermission(p *Principal, permission string) bool
	HasAnyPermission(p *Principal, permissions ...string) bool
	HasAllPermissions(p *Principal, permissions ...string) bool
}

// SetChecker is a PermissionChecker backed only by the principal's explicit
// permission set. Used in tests and as the inner layer of the Casbin checker.
type SetChecker struct{}

// HasPermission reports whether the permission is in the explicit set.
func (SetChecker) HasPermission(p *Principal, permission string) bool {
	return p.HasExplicitPermission(permission)
}

// HasAnyPermission reports whether any of the permissions are in the explicit set.
func (SetChecker) HasAnyPermission(p *Principal, permissions ...string) bool {
	for _, perm := range permissions {
		if p.HasExplicitPermission(perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether all of the permissions are in the explicit set.
func (SetChecker) HasAllPermissions(p *Principal, permissions ...string) bool {
	for _, perm := range permissions {
		if !p.HasExplicitPermission(perm) {
			return false
		}
	}
	return true
}
