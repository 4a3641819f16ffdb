// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TACOPS_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8089 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Realtime.IdleTimeout != 5*time.Minute {
		t.Errorf("default idle timeout = %s", cfg.Realtime.IdleTimeout)
	}
	if cfg.Realtime.SweepInterval != time.Minute {
		t.Errorf("default sweep interval = %s", cfg.Realtime.SweepInterval)
	}
	if cfg.Persist.QueueSize != 1024 {
		t.Errorf("default queue size = %d", cfg.Persist.QueueSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %s", cfg.Logging.Level)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TACOPS_AUTH_JWT_SECRET", testSecret)
	t.Setenv("TACOPS_SERVER_PORT", "9100")
	t.Setenv("TACOPS_REALTIME_IDLE_TIMEOUT", "10m")
	t.Setenv("TACOPS_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("port override = %d", cfg.Server.Port)
	}
	if cfg.Realtime.IdleTimeout != 10*time.Minute {
		t.Errorf("idle timeout override = %s", cfg.Realtime.IdleTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level override = %s", cfg.Logging.Level)
	}
}

func TestConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "tacops.yaml")
	content := strings.Join([]string{
		"server:",
		"  port: 9200",
		"realtime:",
		"  sweep_interval: 30s",
		"auth:",
		"  jwt_secret: " + testSecret,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("file port = %d", cfg.Server.Port)
	}
	if cfg.Realtime.SweepInterval != 30*time.Second {
		t.Errorf("file sweep interval = %s", cfg.Realtime.SweepInterval)
	}

	// Environment still wins over the file.
	t.Setenv("TACOPS_SERVER_PORT", "9300")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("env should beat file, port = %d", cfg.Server.Port)
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.JWTSecret = testSecret
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"sweep exceeds idle", func(c *Config) {
			c.Realtime.SweepInterval = 10 * time.Minute
			c.Realtime.IdleTimeout = time.Minute
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"duplicate users", func(c *Config) {
			c.Auth.Users = []DevUser{
				{ID: "u1", Username: "alice", AccessKey: "password1", Role: "user"},
				{ID: "u2", Username: "alice", AccessKey: "password2", Role: "admin"},
			}
		}},
		{"bad user role", func(c *Config) {
			c.Auth.Users = []DevUser{
				{ID: "u1", Username: "alice", AccessKey: "password1", Role: "superuser"},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
