// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package auth

import (
	"context"
	"errors"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credential was provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the credential was invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates the credential has expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Resolver turns an opaque credential into a Principal. The coordination
// layer calls it exactly once per connection, during authentication.
type Resolver interface {
	// Verify validates the credential and returns the principal it
	// identifies, or an error from the taxonomy above.
	Verify(ctx context.Context, credential string) (*Principal, error)

	// Name returns the resolver's name for logging.
	Name() string
}
