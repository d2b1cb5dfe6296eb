package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts path searches by engine and outcome.
	// Outcomes: "found", "not_connected", "unknown_person", "canceled", "error".
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "degrees_search_total",
		Help: "Total shortest-path searches by engine and outcome",
	}, []string{"engine", "outcome"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "degrees_search_duration_seconds",
		Help:    "Shortest-path search duration",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30},
	}, []string{"engine"})

	searchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "degrees_search_expanded_nodes",
		Help:    "Nodes expanded per local search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	searchDegrees = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "degrees_search_path_degrees",
		Help:    "Degrees of separation of found paths",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	fallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "degrees_memgraph_fallback_total",
		Help: "Memgraph queries that fell back to the local engine",
	})
)
