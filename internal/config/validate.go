// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package config

import (
	"fmt"

	"github.com/abusallam/tacops-realtime/internal/validation"
)

// Validate checks the configuration for structural and semantic errors.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The sweep can never observe a timeout shorter than its own interval.
	if c.Realtime.SweepInterval > c.Realtime.IdleTimeout {
		return fmt.Errorf("realtime.sweep_interval (%s) must not exceed realtime.idle_timeout (%s)",
			c.Realtime.SweepInterval, c.Realtime.IdleTimeout)
	}

	seen := make(map[string]struct{}, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("duplicate user %q in auth.users", u.Username)
		}
		seen[u.Username] = struct{}{}
	}

	return nil
}
