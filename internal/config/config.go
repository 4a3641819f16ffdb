// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package config loads layered configuration with Koanf v2:
// built-in defaults, then a YAML config file, then environment variables
// (highest priority, TACOPS_ prefix with _ as the section separator).
package config

import (
	"time"
)

// Config is the root configuration for the coordination server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Persist  PersistConfig  `koanf:"persist"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	RequestsPerMin  int           `koanf:"requests_per_min" validate:"min=1"`
}

// AuthConfig holds credential resolution settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=32"`

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// Users is the static user table served by the dev login endpoint.
	Users []DevUser `koanf:"users" validate:"dive"`
}

// DevUser is one entry in the static login table. AccessKey is compared
// verbatim; this table exists for single-node deployments without an
// external identity provider.
type DevUser struct {
	ID          string   `koanf:"id" validate:"required"`
	Username    string   `koanf:"username" validate:"required"`
	AccessKey   string   `koanf:"access_key" validate:"required,min=8"`
	Role        string   `koanf:"role" validate:"required,oneof=user admin project_admin root_admin agent"`
	Tier        string   `koanf:"tier" validate:"omitempty,oneof=civilian government military"`
	Permissions []string `koanf:"permissions"`
}

// RealtimeConfig holds coordination-layer tunables.
type RealtimeConfig struct {
	// IdleTimeout is how long a connection may go without any inbound
	// message or heartbeat before the liveness monitor reaps it.
	IdleTimeout time.Duration `koanf:"idle_timeout" validate:"min=1s"`

	// SweepInterval is how often the liveness monitor scans connections.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`

	// SendBuffer is the per-connection outbound message buffer.
	SendBuffer int `koanf:"send_buffer" validate:"min=1"`

	// MaxMessageSize caps inbound message size in bytes.
	MaxMessageSize int64 `koanf:"max_message_size" validate:"min=256"`

	// MessageRate caps inbound messages per second per connection.
	MessageRate float64 `koanf:"message_rate" validate:"min=1"`

	// MessageBurst is the rate limiter burst size.
	MessageBurst int `koanf:"message_burst" validate:"min=1"`
}

// PersistConfig holds durable side-effect writer settings.
type PersistConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the Badger store directory. Empty selects the in-memory store.
	Path string `koanf:"path"`

	// QueueSize bounds the pending-write queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// BreakerThreshold is the consecutive store failures before the
	// circuit opens.
	BreakerThreshold uint32 `koanf:"breaker_threshold" validate:"min=1"`

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// AuditConfig holds security audit logging settings.
type AuditConfig struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size" validate:"min=1"`
	MaxEvents  int  `koanf:"max_events" validate:"min=1"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8089,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RequestsPerMin:  300,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Realtime: RealtimeConfig{
			IdleTimeout:    5 * time.Minute,
			SweepInterval:  60 * time.Second,
			SendBuffer:     256,
			MaxMessageSize: 512 * 1024,
			MessageRate:    50,
			MessageBurst:   100,
		},
		Persist: PersistConfig{
			Enabled:          true,
			Path:             "/data/tacops/events",
			QueueSize:        1024,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1000,
			MaxEvents:  10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
