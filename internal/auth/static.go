// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package auth

import (
	"context"
	"sync"
)

// StaticResolver resolves credentials against an in-memory token table.
// Intended for tests and single-node development setups.
type StaticResolver struct {
	mu         sync.RWMutex
	principals map[string]*Principal
}

// NewStaticResolver creates an empty static resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{principals: make(map[string]*Principal)}
}

// Name implements Resolver.
func (r *StaticResolver) Name() string { return "static" }

// Register maps a credential to a principal.
func (r *StaticResolver) Register(credential string, p *Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.principals[credential] = p
}

// Verify implements Resolver.
func (r *StaticResolver) Verify(_ context.Context, credential string) (*Principal, error) {
	if credential == "" {
		return nil, ErrNoCredentials
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.principals[credential]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}
