// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package persist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/abusallam/tacops-realtime/internal/logging"
	"github.com/abusallam/tacops-realtime/internal/metrics"
)

// TopicEvents is the in-process topic carrying queued event writes.
const TopicEvents = "events.persist"

const (
	tagMetadataKey    = "tag"
	queuedAtMetadata  = "queued_at"
	storeWriteTimeout = 5 * time.Second
)

// Options tune the writer's queue and circuit breaker.
type Options struct {
	// QueueSize bounds the number of pending writes.
	QueueSize int

	// BreakerThreshold is the consecutive-failure count that opens the
	// breaker.
	BreakerThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// Writer queues stamped payloads and drains them to the store in the
// background. Publish never reports failure to the caller; broadcast
// correctness is independent of persistence success. A circuit breaker
// keeps the drain loop fast when the store is stalling, shedding writes
// instead of backing the queue up into the routing path.
type Writer struct {
	store   Store
	pubsub  *gochannel.GoChannel
	breaker *gobreaker.CircuitBreaker[any]
	queued  atomic.Int64
}

// NewWriter creates a writer over the given store.
func NewWriter(store Store, opts Options) *Writer {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(opts.QueueSize),
	}, newWatermillLogger())

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "persist-store",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("persist breaker state changed")
		},
	})

	return &Writer{
		store:   store,
		pubsub:  pubsub,
		breaker: breaker,
	}
}

// Publish queues one stamped payload for a durable write. Fire and
// forget: a full queue or a down worker drops the write with a log line.
func (w *Writer) Publish(tag string, payload []byte) {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(tagMetadataKey, tag)
	msg.Metadata.Set(queuedAtMetadata, time.Now().UTC().Format(time.RFC3339Nano))

	if err := w.pubsub.Publish(TopicEvents, msg); err != nil {
		metrics.PersistWrites.WithLabelValues(tag, "dropped").Inc()
		logging.Error().Err(err).Str("tag", tag).Msg("failed to queue event write")
		return
	}
	metrics.PersistQueueDepth.Set(float64(w.queued.Add(1)))
}

// Serve drains queued writes until the context is canceled. Implements
// suture.Service. Must be running before events flow or queued writes are
// discarded by the pubsub.
func (w *Writer) Serve(ctx context.Context) error {
	messages, err := w.pubsub.Subscribe(ctx, TopicEvents)
	if err != nil {
		return err
	}
	logging.Info().Msg("persist writer started")

	for msg := range messages {
		w.write(ctx, msg)
		msg.Ack()
		metrics.PersistQueueDepth.Set(float64(w.queued.Add(-1)))
	}
	return ctx.Err()
}

func (w *Writer) write(ctx context.Context, msg *message.Message) {
	tag := msg.Metadata.Get(tagMetadataKey)

	rec := &Record{
		ID:        msg.UUID,
		Tag:       tag,
		Timestamp: time.Now().UTC(),
		Payload:   append([]byte(nil), msg.Payload...),
	}
	if queuedAt, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get(queuedAtMetadata)); err == nil {
		rec.Timestamp = queuedAt
	}

	save := w.saveFunc(tag)
	if save == nil {
		metrics.PersistWrites.WithLabelValues(tag, "dropped").Inc()
		logging.Warn().Str("tag", tag).Msg("no store write for tag, dropping")
		return
	}

	_, err := w.breaker.Execute(func() (any, error) {
		writeCtx, cancel := context.WithTimeout(ctx, storeWriteTimeout)
		defer cancel()
		return nil, save(writeCtx, rec)
	})
	if err != nil {
		metrics.PersistWrites.WithLabelValues(tag, "failed").Inc()
		logging.Error().Err(err).Str("tag", tag).Str("record_id", rec.ID).Msg("event write failed")
		return
	}
	metrics.PersistWrites.WithLabelValues(tag, "ok").Inc()
}

func (w *Writer) saveFunc(tag string) func(context.Context, *Record) error {
	switch tag {
	case "map_annotation":
		return w.store.SaveMapAnnotation
	case "task_update":
		return w.store.SaveTaskUpdate
	case "task_verification":
		return w.store.SaveTaskVerification
	case "emergency_alert":
		return w.store.SaveEmergencyAlert
	case "asset_location":
		return w.store.SaveAssetLocation
	case "asset_status":
		return w.store.SaveAssetStatus
	case "chat_message":
		return w.store.SaveChatMessage
	default:
		return nil
	}
}

// Close shuts the queue down. Pending messages already handed to the
// worker finish; the rest are dropped.
func (w *Writer) Close() error {
	return w.pubsub.Close()
}

// String names the service in supervisor logs.
func (w *Writer) String() string { return "persist-writer" }
