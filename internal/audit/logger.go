// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abusallam/tacops-realtime/internal/logging"
)

// writeTimeout bounds one store write so a stalled store cannot wedge the
// async writer.
const writeTimeout = 5 * time.Second

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool

	// BufferSize is the size of the async write buffer. When the buffer
	// is full new events are dropped, never blocking the caller.
	BufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{Enabled: true, BufferSize: 1000}
}

// Logger records audit events through a buffered async writer.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates an audit logger and starts its async writer.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Record queues an audit event. Drops the event when the logger is
// disabled or the buffer is full.
func (l *Logger) Record(event *Event) {
	if l == nil || !l.config.Enabled {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("type", string(event.Type)).Msg("audit buffer full, dropping event")
	}
}

// Stop drains remaining buffered events and stops the writer.
func (l *Logger) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
}

// asyncWriter processes events from the buffer until stopped.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent persists one event to the store.
func (l *Logger) writeEvent(event *Event) {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("type", string(event.Type)).Msg("failed to save audit event")
	}
}
