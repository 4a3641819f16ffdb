// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTResolverRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTResolver("short", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	r, err := NewJWTResolver(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	in := &Principal{
		ID:           "u1",
		Username:     "alice",
		Role:         RoleAdmin,
		SecurityTier: TierGovernment,
		Permissions:  []string{PermCreateEmergencies, PermReadOperations},
	}
	token, err := r.Issue(in)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	out, err := r.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.ID != in.ID || out.Username != in.Username || out.Role != in.Role || out.SecurityTier != in.SecurityTier {
		t.Errorf("principal mismatch: got %+v", out)
	}
	if len(out.Permissions) != 2 {
		t.Errorf("permissions not carried: %v", out.Permissions)
	}
	if out.SessionID == "" {
		t.Error("session id not assigned")
	}
}

func TestVerifyRejections(t *testing.T) {
	r, err := NewJWTResolver(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	expiredToken := func() string {
		claims := &Claims{
			Username: "alice",
			Role:     string(RoleUser),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign expired token: %v", err)
		}
		return signed
	}()

	otherSecret, _ := NewJWTResolver("ffffffffffffffffffffffffffffffff", time.Hour)
	foreignToken, err := otherSecret.Issue(&Principal{ID: "u1", Username: "alice", Role: RoleUser})
	if err != nil {
		t.Fatalf("issue foreign token: %v", err)
	}

	badRoleToken := func() string {
		claims := &Claims{
			Username: "alice",
			Role:     "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign bad-role token: %v", err)
		}
		return signed
	}()

	tests := []struct {
		name       string
		credential string
		wantErr    error
	}{
		{"empty credential", "", ErrNoCredentials},
		{"garbage", "not-a-token", ErrInvalidCredentials},
		{"expired", expiredToken, ErrExpiredCredentials},
		{"wrong secret", foreignToken, ErrInvalidCredentials},
		{"unknown role", badRoleToken, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Verify(context.Background(), tt.credential)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyDefaultsUnknownTierToCivilian(t *testing.T) {
	r, _ := NewJWTResolver(testSecret, time.Hour)
	token, err := r.Issue(&Principal{ID: "u1", Username: "alice", Role: RoleUser, SecurityTier: "orbital"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	out, err := r.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.SecurityTier != TierCivilian {
		t.Errorf("tier = %s, want civilian fallback", out.SecurityTier)
	}
}
