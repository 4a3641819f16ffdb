// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"github.com/goccy/go-json"
)

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope of the given type.
func NewEnvelope(tag string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: tag}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: tag, Data: raw}, nil
}

// errorEnvelope builds an error reply for the sender. tag is TagError or
// TagAuthError.
func errorEnvelope(tag, message string) Envelope {
	env, _ := NewEnvelope(tag, map[string]string{"message": message})
	return env
}
