// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/abusallam/tacops-realtime/internal/auth"
	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/realtime"
	"github.com/abusallam/tacops-realtime/internal/validation"
)

type loginRequest struct {
	Username  string `json:"username" validate:"required"`
	AccessKey string `json:"accessKey" validate:"required"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expiresIn"`
	Principal map[string]any `json:"principal"`
}

// handleLogin issues a session token against the static user table. The
// lookup always runs a constant-time compare so the response timing does
// not reveal which usernames exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var matched *auth.Principal
	for _, u := range s.cfg.Auth.Users {
		nameOK := subtle.ConstantTimeCompare([]byte(u.Username), []byte(req.Username)) == 1
		keyOK := subtle.ConstantTimeCompare([]byte(u.AccessKey), []byte(req.AccessKey)) == 1
		if nameOK && keyOK {
			tier := auth.SecurityTier(u.Tier)
			if !tier.Valid() {
				tier = auth.TierCivilian
			}
			matched = &auth.Principal{
				ID:           u.ID,
				Username:     u.Username,
				Role:         auth.Role(u.Role),
				SecurityTier: tier,
				Permissions:  u.Permissions,
			}
		}
	}
	if matched == nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Str("username", req.Username).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.issuer.Issue(matched)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.Auth.TokenTTL.Seconds()),
		Principal: matched.Summary(),
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Connections: s.hub.ConnectionCount(),
		Rooms:       s.hub.Rooms().RoomCount(),
	})
}

// handleWebSocket upgrades the connection and hands it to the hub. The
// client authenticates in-band with its first message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(s.hub, conn, realtime.ClientOptions{
		SendBuffer:     s.cfg.Realtime.SendBuffer,
		MaxMessageSize: s.cfg.Realtime.MaxMessageSize,
		MessageRate:    s.cfg.Realtime.MessageRate,
		MessageBurst:   s.cfg.Realtime.MessageBurst,
	})
	client.Run(r.Context())
}

// checkOrigin validates the Origin header against the configured allow
// list. Non-browser clients without an Origin header are accepted.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket rejected, origin not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
