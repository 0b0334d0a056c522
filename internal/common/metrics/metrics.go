package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of findMatch requests by outcome",
		},
		[]string{"outcome"},
	)

	MatchStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "match_stage_duration_seconds",
			Help: "Duration of each matching pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	MatchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_cache_hits_total",
			Help: "Total number of match cache hits",
		},
	)

	MatchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_cache_misses_total",
			Help: "Total number of match cache misses",
		},
	)

	ReasoningDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_reasoning_degraded_total",
			Help: "Total number of matches that fell back to rule-derived reasoning",
		},
	)

	ReasoningRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_reasoning_retries_total",
			Help: "Total number of AI reasoning retry attempts",
		},
	)
)
