// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package metrics exposes Prometheus instrumentation for the coordination
// layer: connection lifecycle, room membership, event routing, broadcast
// delivery and durable side-effect writes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tacops_active_connections",
			Help: "Current number of authenticated connections",
		},
	)

	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tacops_connections_total",
			Help: "Total connection attempts by outcome",
		},
		[]string{"outcome"}, // "admitted", "auth_failed"
	)

	ReapedConnections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tacops_reaped_connections_total",
			Help: "Total connections forcibly closed by the liveness monitor",
		},
	)

	// Room metrics
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tacops_active_rooms",
			Help: "Current number of rooms with at least one member",
		},
	)

	// Event routing metrics
	EventsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tacops_events_routed_total",
			Help: "Total inbound events by tag and routing outcome",
		},
		[]string{"tag", "outcome"}, // "delivered", "denied", "dropped"
	)

	RouteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tacops_route_duration_seconds",
			Help:    "Time spent routing one inbound event",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"tag"},
	)

	BroadcastsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tacops_broadcasts_delivered_total",
			Help: "Total messages delivered to individual connections",
		},
	)

	SlowClientDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tacops_slow_client_drops_total",
			Help: "Total messages dropped because a client send buffer was full",
		},
	)

	AuthorizationDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tacops_authorization_denials_total",
			Help: "Total events rejected for missing permissions",
		},
		[]string{"tag"},
	)

	// Durable side-effect writer metrics
	PersistWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tacops_persist_writes_total",
			Help: "Total durable writes by event tag and outcome",
		},
		[]string{"tag", "outcome"}, // "ok", "error", "dropped", "breaker_open"
	)

	PersistQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tacops_persist_queue_depth",
			Help: "Pending records in the durable write queue",
		},
	)
)

// ObserveRouteDuration records the duration of one routed event.
func ObserveRouteDuration(tag string, start time.Time) {
	RouteDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())
}
