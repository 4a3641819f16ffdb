// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"github.com/abusallam/tacops-realtime/internal/auth"
)

// Inbound message tags.
const (
	TagAuthenticate     = "authenticate"
	TagJoinOperation    = "join_operation"
	TagLeaveOperation   = "leave_operation"
	TagMapAnnotation    = "map_annotation"
	TagMapCursor        = "map_cursor"
	TagMapSelection     = "map_selection"
	TagTaskUpdate       = "task_update"
	TagTaskVerification = "task_verification"
	TagEmergencyAlert   = "emergency_alert"
	TagAssetLocation    = "asset_location"
	TagAssetStatus      = "asset_status"
	TagVoiceSession     = "voice_session"
	TagChatMessage      = "chat_message"
	TagSystemStatus     = "system_status"
	TagAgentDecision    = "agent_decision"
	TagUserStatus       = "user_status"
	TagHeartbeat        = "heartbeat"
)

// Outbound-only message tags.
const (
	TagAuthenticated       = "authenticated"
	TagAuthError           = "auth_error"
	TagError               = "error"
	TagUserJoinedOperation = "user_joined_operation"
	TagUserLeftOperation   = "user_left_operation"
	TagHeartbeatAck        = "heartbeat_ack"
)

// Policy describes what an inbound tag requires and how its broadcast
// behaves. The zero value is the fallback for unrecognized tags: no
// permission beyond being authenticated, no persistence, self-echo included.
type Policy struct {
	// Permission is the permission name required to send this tag.
	// Empty means authenticated is enough.
	Permission string

	// Role restricts the tag to one role. Empty means any role.
	Role auth.Role

	// Persist marks the stamped payload for a durable write after
	// broadcast.
	Persist bool

	// SuppressSelfEcho excludes the sending connection from the
	// broadcast so clients do not re-render their own input from the
	// network. State-confirming tags keep self-echo so all of a
	// principal's devices stay in sync.
	SuppressSelfEcho bool
}

// policies is the static tag table. Tags absent from the table fall back
// to the zero Policy.
var policies = map[string]Policy{
	TagJoinOperation:    {Permission: auth.PermReadOperations},
	TagLeaveOperation:   {Permission: auth.PermReadOperations},
	TagMapAnnotation:    {Permission: auth.PermReadOperations, Persist: true, SuppressSelfEcho: true},
	TagMapCursor:        {Permission: auth.PermReadOperations, SuppressSelfEcho: true},
	TagMapSelection:     {Permission: auth.PermReadOperations, SuppressSelfEcho: true},
	TagTaskUpdate:       {Permission: auth.PermUpdateOperations, Persist: true},
	TagTaskVerification: {Persist: true},
	TagEmergencyAlert:   {Permission: auth.PermCreateEmergencies, Persist: true},
	TagAssetLocation:    {Permission: auth.PermReadAssets, Persist: true},
	TagAssetStatus:      {Permission: auth.PermReadAssets, Persist: true},
	TagVoiceSession:     {},
	TagChatMessage:      {Persist: true},
	TagSystemStatus:     {Permission: auth.PermSystemMonitoring},
	TagAgentDecision:    {Role: auth.RoleAgent},
	TagUserStatus:       {},
	TagHeartbeat:        {},
}

// PolicyFor returns the policy for a tag, falling back to the zero policy
// for unrecognized tags.
func PolicyFor(tag string) Policy {
	return policies[tag]
}

// auditMirrored lists tags whose broadcasts are additionally delivered to
// the admin and project_admin role rooms.
var auditMirrored = map[string]bool{
	TagTaskUpdate:     true,
	TagAssetStatus:    true,
	TagEmergencyAlert: true,
}

// operationScoped lists tags whose fan-out target is the operation room
// named by the payload's operationId.
var operationScoped = map[string]bool{
	TagMapAnnotation: true,
	TagMapCursor:     true,
	TagMapSelection:  true,
	TagTaskUpdate:    true,
	TagAssetLocation: true,
	TagAssetStatus:   true,
}
