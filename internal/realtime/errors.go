// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import "errors"

var (
	// ErrAuthenticationFailed wraps a resolver rejection. The caller must
	// close the transport; no registry state was created.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthorized indicates the principal lacks the permission or
	// role an event tag requires. Terminal for that event only.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUnknownConnection indicates the connection is not registered
	// (already disconnected).
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrMalformedPayload indicates an event payload could not be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
)
