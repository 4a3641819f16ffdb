// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/abusallam/tacops-realtime/internal/audit"
	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/metrics"
)

// EventSink receives stamped payloads for durable side-effect writes.
// Publish must never block the routing path; failures are the sink's
// problem, not the router's.
type EventSink interface {
	Publish(tag string, payload []byte)
}

// nopSink discards everything. Used when persistence is disabled.
type nopSink struct{}

func (nopSink) Publish(string, []byte) {}

// Router authorizes inbound events and fans them out to the connections
// in the computed target set. It holds no membership or connection state
// of its own.
type Router struct {
	registry *Registry
	rooms    *RoomManager
	checker  auth.PermissionChecker
	sink     EventSink
	auditLog *audit.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewRouter wires a router. sink and auditLog may be nil.
func NewRouter(registry *Registry, rooms *RoomManager, checker auth.PermissionChecker, sink EventSink, auditLog *audit.Logger) *Router {
	if sink == nil {
		sink = nopSink{}
	}
	return &Router{
		registry: registry,
		rooms:    rooms,
		checker:  checker,
		sink:     sink,
		auditLog: auditLog,
		now:      time.Now,
	}
}

// Handle processes one inbound event from a connection. Callers invoke it
// synchronously from the connection's read loop, which is what preserves
// per-sender ordering. All failure modes are terminal for this event only;
// the returned error is diagnostic and the connection stays open.
func (r *Router) Handle(id ConnID, tag string, payload json.RawMessage) error {
	start := r.now()

	conn, ok := r.registry.Get(id)
	if !ok {
		// Already disconnected, drop silently.
		metrics.EventsRouted.WithLabelValues(tag, "dropped").Inc()
		return ErrUnknownConnection
	}
	conn.Touch()

	policy := PolicyFor(tag)
	if err := r.authorize(conn, tag, policy); err != nil {
		metrics.EventsRouted.WithLabelValues(tag, "denied").Inc()
		return err
	}

	var err error
	switch tag {
	case TagHeartbeat:
		err = r.handleHeartbeat(conn)
	case TagJoinOperation:
		err = r.handleJoinOperation(conn, payload)
	case TagLeaveOperation:
		err = r.handleLeaveOperation(conn, payload)
	default:
		err = r.handleBroadcast(conn, tag, payload, policy)
	}

	outcome := "routed"
	if err != nil {
		outcome = "malformed"
	}
	metrics.EventsRouted.WithLabelValues(tag, outcome).Inc()
	metrics.ObserveRouteDuration(tag, start)
	return err
}

// authorize checks the tag's role and permission requirements against the
// sending principal. On denial it replies to the sender only.
func (r *Router) authorize(conn *Connection, tag string, policy Policy) error {
	p := conn.Principal()

	denied := ""
	if policy.Role != "" && p.Role != policy.Role {
		denied = fmt.Sprintf("role %s required", policy.Role)
	} else if policy.Permission != "" && !r.checker.HasPermission(p, policy.Permission) {
		denied = fmt.Sprintf("permission %s required", policy.Permission)
	}
	if denied == "" {
		return nil
	}

	metrics.AuthorizationDenials.WithLabelValues(tag).Inc()
	r.auditLog.Record(&audit.Event{
		Type:         audit.EventTypeAuthzDenied,
		Severity:     audit.SeverityWarning,
		PrincipalID:  p.ID,
		Username:     p.Username,
		ConnectionID: string(conn.ID()),
		Detail:       map[string]string{"tag": tag, "reason": denied},
	})
	logging.Warn().
		Str("connection_id", string(conn.ID())).
		Str("username", p.Username).
		Str("tag", tag).
		Str("reason", denied).
		Msg("event denied")

	conn.Deliver(errorEnvelope(TagError, "not authorized for "+tag))
	return fmt.Errorf("%w: %s: %s", ErrNotAuthorized, tag, denied)
}

func (r *Router) handleHeartbeat(conn *Connection) error {
	env, err := NewEnvelope(TagHeartbeatAck, map[string]string{
		"timestamp": r.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	conn.Deliver(env)
	return nil
}

type operationRef struct {
	OperationID string `json:"operationId"`
}

func (r *Router) handleJoinOperation(conn *Connection, payload json.RawMessage) error {
	var ref operationRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.OperationID == "" {
		conn.Deliver(errorEnvelope(TagError, "join_operation requires operationId"))
		return fmt.Errorf("%w: join_operation", ErrMalformedPayload)
	}

	room := OperationRoom(ref.OperationID)
	joined := r.rooms.Join(room, conn.ID())

	p := conn.Principal()
	ack, err := NewEnvelope(TagJoinOperation, map[string]any{
		"operationId":  ref.OperationID,
		"participants": r.participantNames(room),
	})
	if err != nil {
		return err
	}
	conn.Deliver(ack)

	// Repeat joins ack but do not re-announce.
	if !joined {
		return nil
	}

	r.auditLog.Record(&audit.Event{
		Type:         audit.EventTypeRoomJoined,
		PrincipalID:  p.ID,
		Username:     p.Username,
		ConnectionID: string(conn.ID()),
		Detail:       map[string]string{"room": room},
	})

	notice, err := NewEnvelope(TagUserJoinedOperation, map[string]string{
		"principalId": p.ID,
		"username":    p.Username,
		"operationId": ref.OperationID,
	})
	if err != nil {
		return err
	}
	r.deliverTo(r.rooms.MembersOf(room), notice, conn.ID())
	return nil
}

func (r *Router) handleLeaveOperation(conn *Connection, payload json.RawMessage) error {
	var ref operationRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.OperationID == "" {
		conn.Deliver(errorEnvelope(TagError, "leave_operation requires operationId"))
		return fmt.Errorf("%w: leave_operation", ErrMalformedPayload)
	}

	room := OperationRoom(ref.OperationID)
	if !r.rooms.Leave(room, conn.ID()) {
		// Leaving a room the connection is not in is a no-op.
		return nil
	}

	p := conn.Principal()
	r.auditLog.Record(&audit.Event{
		Type:         audit.EventTypeRoomLeft,
		PrincipalID:  p.ID,
		Username:     p.Username,
		ConnectionID: string(conn.ID()),
		Detail:       map[string]string{"room": room},
	})

	notice, err := NewEnvelope(TagUserLeftOperation, map[string]string{
		"principalId": p.ID,
		"username":    p.Username,
		"operationId": ref.OperationID,
	})
	if err != nil {
		return err
	}
	r.deliverTo(r.rooms.MembersOf(room), notice, conn.ID())
	return nil
}

// handleBroadcast runs the generic path: stamp, compute targets, fan out,
// then hand off for persistence.
func (r *Router) handleBroadcast(conn *Connection, tag string, payload json.RawMessage, policy Policy) error {
	stamped, fields, err := r.stamp(conn, payload)
	if err != nil {
		logging.Debug().
			Str("connection_id", string(conn.ID())).
			Str("tag", tag).
			Err(err).
			Msg("malformed payload")
		conn.Deliver(errorEnvelope(TagError, "malformed payload for "+tag))
		return fmt.Errorf("%w: %s", ErrMalformedPayload, tag)
	}

	targets, err := r.targets(conn, tag, fields)
	if err != nil {
		conn.Deliver(errorEnvelope(TagError, err.Error()))
		return fmt.Errorf("%w: %s", ErrMalformedPayload, tag)
	}

	env := Envelope{Type: tag, Data: stamped}
	var exclude ConnID
	if policy.SuppressSelfEcho {
		exclude = conn.ID()
	}
	r.deliverTo(targets, env, exclude)

	if policy.Persist {
		r.sink.Publish(tag, stamped)
	}

	if tag == TagEmergencyAlert {
		p := conn.Principal()
		r.auditLog.Record(&audit.Event{
			Type:         audit.EventTypeEmergencyRaised,
			Severity:     audit.SeverityCritical,
			PrincipalID:  p.ID,
			Username:     p.Username,
			ConnectionID: string(conn.ID()),
		})
	}
	return nil
}

// stamp decodes the payload, overwrites sender identity, event ID, and the
// server timestamp, and re-encodes. Client-supplied timestamps are never
// trusted for ordering.
func (r *Router) stamp(conn *Connection, payload json.RawMessage) (json.RawMessage, map[string]any, error) {
	fields := make(map[string]any)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, nil, err
		}
	}

	p := conn.Principal()
	fields["senderId"] = p.ID
	fields["senderUsername"] = p.Username
	fields["eventId"] = uuid.New().String()
	fields["timestamp"] = r.now().UTC().Format(time.RFC3339Nano)

	stamped, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, err
	}
	return stamped, fields, nil
}

// targets computes the fan-out set for a tag. Emergency alerts bypass room
// scoping entirely: life-safety information goes to every authenticated
// connection.
func (r *Router) targets(conn *Connection, tag string, fields map[string]any) ([]ConnID, error) {
	if tag == TagEmergencyAlert {
		all := r.registry.All()
		ids := make([]ConnID, 0, len(all))
		for _, c := range all {
			ids = append(ids, c.ID())
		}
		return ids, nil
	}

	set := make(map[ConnID]struct{})
	add := func(room string) {
		for _, id := range r.rooms.MembersOf(room) {
			set[id] = struct{}{}
		}
	}

	switch {
	case operationScoped[tag]:
		opID, _ := fields["operationId"].(string)
		if opID == "" {
			return nil, fmt.Errorf("%s requires operationId", tag)
		}
		add(OperationRoom(opID))
	case tag == TagVoiceSession:
		raw, _ := fields["participants"].([]any)
		if len(raw) == 0 {
			return nil, fmt.Errorf("voice_session requires participants")
		}
		for _, v := range raw {
			if id, ok := v.(string); ok && id != "" {
				add(UserRoom(id))
			}
		}
	case tag == TagSystemStatus || tag == TagAgentDecision:
		add(RoleRoom(auth.RoleAdmin))
	case tag == TagChatMessage || tag == TagTaskVerification:
		if opID, _ := fields["operationId"].(string); opID != "" {
			add(OperationRoom(opID))
		} else {
			add(RoleRoom(conn.Principal().Role))
		}
	default:
		// Presence and unrecognized tags reach the sender's role room.
		add(RoleRoom(conn.Principal().Role))
	}

	if auditMirrored[tag] {
		add(RoleRoom(auth.RoleAdmin))
		add(RoleRoom(auth.RoleProjectAdmin))
	}

	ids := make([]ConnID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

// deliverTo fans an envelope out to a target set, skipping exclude. A
// false return from Deliver means the client's send buffer was full; the
// message is dropped for that client rather than stalling the rest of the
// room.
func (r *Router) deliverTo(targets []ConnID, env Envelope, exclude ConnID) {
	for _, id := range targets {
		if id == exclude {
			continue
		}
		conn, ok := r.registry.Get(id)
		if !ok {
			continue
		}
		if conn.Deliver(env) {
			metrics.BroadcastsDelivered.Inc()
		} else {
			metrics.SlowClientDrops.Inc()
			logging.Debug().
				Str("connection_id", string(id)).
				Str("tag", env.Type).
				Msg("slow client, message dropped")
		}
	}
}

// participantNames returns the usernames present in a room, deduplicated
// across a principal's devices.
func (r *Router) participantNames(room string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, id := range r.rooms.MembersOf(room) {
		conn, ok := r.registry.Get(id)
		if !ok {
			continue
		}
		name := conn.Principal().Username
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
