// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/abusallam/tacops-realtime/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// authWait caps how long an unauthenticated socket may sit idle
	// before the read deadline tears it down.
	authWait = 30 * time.Second
)

// ClientOptions tune one websocket client.
type ClientOptions struct {
	SendBuffer     int
	MaxMessageSize int64
	MessageRate    float64
	MessageBurst   int
}

// Client bridges one gorilla websocket connection to the hub. It is the
// Transport the registry sees. Outbound delivery goes through a buffered
// channel drained by the write pump so one slow client can never stall a
// broadcast.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan Envelope
	limiter *rate.Limiter
	opts    ClientOptions

	closeOnce sync.Once
	done      chan struct{}

	// connID is set once, on successful authentication, before any other
	// message is read.
	connID ConnID
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan Envelope, opts.SendBuffer),
		limiter: rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst),
		opts:    opts,
		done:    make(chan struct{}),
	}
}

// Deliver queues an envelope for the write pump. Never blocks; reports
// false when the buffer is full or the client is closed.
func (c *Client) Deliver(env Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Close tears the connection down. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// RemoteAddr returns the peer address.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Run drives both pumps and blocks until the connection is gone. The
// caller is the HTTP handler goroutine after the upgrade.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// readPump reads inbound frames and feeds the router synchronously, which
// is what preserves per-sender ordering. The first message must be
// authenticate; everything before admission runs under a short deadline.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if c.connID != "" {
			c.hub.Disconnect(c.connID)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(authWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logging.Debug().Err(err).Str("remote", c.RemoteAddr()).Msg("websocket closed unexpectedly")
			}
			return
		}

		if !c.limiter.Allow() {
			logging.Warn().Str("remote", c.RemoteAddr()).Msg("message rate exceeded, dropping")
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			c.Deliver(errorEnvelope(TagError, "malformed message"))
			continue
		}

		if c.connID == "" {
			if !c.authenticate(ctx, env) {
				return
			}
			continue
		}

		if env.Type == TagAuthenticate {
			c.Deliver(errorEnvelope(TagError, "already authenticated"))
			continue
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		_ = c.hub.Router().Handle(c.connID, env.Type, env.Data)
	}
}

// authenticate admits the connection through the hub. On failure the
// client is told auth_error and the socket is closed; nothing was
// registered.
func (c *Client) authenticate(ctx context.Context, env Envelope) bool {
	if env.Type != TagAuthenticate {
		c.Deliver(errorEnvelope(TagAuthError, "authenticate first"))
		return false
	}

	var cred struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &cred); err != nil || cred.Token == "" {
		c.Deliver(errorEnvelope(TagAuthError, "credential required"))
		return false
	}

	conn, err := c.hub.Authenticate(ctx, cred.Token, c)
	if err != nil {
		c.Deliver(errorEnvelope(TagAuthError, "authentication failed"))
		// Give the write pump a moment to flush the error before close.
		time.Sleep(50 * time.Millisecond)
		return false
	}
	c.connID = conn.ID()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		conn.Touch()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ack, err := NewEnvelope(TagAuthenticated, conn.Principal().Summary())
	if err == nil {
		c.Deliver(ack)
	}
	return true
}

// writePump serializes all writes to the socket and keeps the peer alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case env := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				logging.Error().Err(err).Str("tag", env.Type).Msg("failed to encode envelope")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
