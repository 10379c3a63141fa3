package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	// eventsPublished counts publish attempts by topic and outcome (ok, error).
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_events_published_total",
		Help: "Kafka publish attempts by topic and outcome.",
	}, []string{"topic", "outcome"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_publish_duration_seconds",
		Help:    "Latency of synchronous Kafka publishes.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"topic"})
)
