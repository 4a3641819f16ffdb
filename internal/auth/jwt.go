// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minSecretLength is the minimum JWT secret length accepted.
// Shorter secrets are trivially brute-forceable with HS256.
const minSecretLength = 32

// Claims represents the JWT claims carried by a session token.
type Claims struct {
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	SecurityTier string   `json:"securityTier"`
	Permissions  []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver validates HS256-signed session tokens and produces Principals.
// It implements Resolver.
type JWTResolver struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTResolver creates a JWT resolver with the given signing secret and
// token lifetime. The secret must be at least 32 characters.
func NewJWTResolver(secret string, ttl time.Duration) (*JWTResolver, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTResolver{secret: []byte(secret), ttl: ttl}, nil
}

// Name implements Resolver.
func (r *JWTResolver) Name() string { return "jwt" }

// Issue creates a signed session token for the given principal attributes.
func (r *JWTResolver) Issue(p *Principal) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:     p.Username,
		Role:         string(p.Role),
		SecurityTier: string(p.SecurityTier),
		Permissions:  p.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify implements Resolver. It rejects tokens signed with an unexpected
// algorithm before checking the signature, expiration and activation times.
func (r *JWTResolver) Verify(_ context.Context, credential string) (*Principal, error) {
	if credential == "" {
		return nil, ErrNoCredentials
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredCredentials, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	role := Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidCredentials, claims.Role)
	}
	tier := SecurityTier(claims.SecurityTier)
	if !tier.Valid() {
		tier = TierCivilian
	}

	return &Principal{
		ID:           claims.Subject,
		Username:     claims.Username,
		Role:         role,
		SecurityTier: tier,
		Permissions:  claims.Permissions,
		SessionID:    claims.ID,
	}, nil
}
