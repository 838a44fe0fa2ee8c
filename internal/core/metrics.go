// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TurnsProcessed is the counter for completed player turns.
// Use RegisterMetrics to register this with a Prometheus registry.
var TurnsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftway_turns_total",
		Help: "Total number of player turns processed",
	},
	[]string{"kind", "choice"},
)

// TurnDuration is the histogram for turn processing duration, oracle
// calls included.
var TurnDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "driftway_turn_duration_seconds",
		Help:    "Turn processing duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// EventsPublished is the counter for events fanned out by the bus.
var EventsPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftway_events_published_total",
		Help: "Total number of game events published",
	},
	[]string{"type"},
)

// WitnessFailures counts witnesses skipped because their memory update
// failed. The event itself is still delivered to the others.
var WitnessFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "driftway_witness_failures_total",
		Help: "Total number of witness memory updates that failed",
	},
)

// RoomsMaterialized counts rooms created by lazy generation.
var RoomsMaterialized = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "driftway_rooms_materialized_total",
		Help: "Total number of rooms materialized by exploration",
	},
)

// RegisterMetrics registers core package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TurnsProcessed)
	reg.MustRegister(TurnDuration)
	reg.MustRegister(EventsPublished)
	reg.MustRegister(WitnessFailures)
	reg.MustRegister(RoomsMaterialized)
}

// RecordTurn increments the turn counter and records its duration.
func RecordTurn(kind, choice string, duration time.Duration) {
	TurnsProcessed.WithLabelValues(kind, choice).Inc()
	TurnDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
