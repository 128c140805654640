// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petfinder_match_submissions_total",
			Help: "Photo match submissions by terminal outcome",
		},
		[]string{"outcome"},
	)

	MatchSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "petfinder_match_submission_duration_seconds",
			Help:    "Round-trip time of comparison service calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	MatchSubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "petfinder_match_submissions_in_flight",
			Help: "Comparison calls currently in flight",
		},
	)

	LocationAcquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petfinder_location_acquisitions_total",
			Help: "Location acquisitions by source stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	GeocodeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petfinder_geocode_fallbacks_total",
			Help: "Addresses that fell back to formatted coordinates",
		},
		[]string{"reason"},
	)

	StaleCompletionsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petfinder_stale_completions_discarded_total",
			Help: "Async completions dropped because a newer request superseded them",
		},
		[]string{"component"},
	)
)
