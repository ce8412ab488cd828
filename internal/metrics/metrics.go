// Package metrics exposes Prometheus counters for the curation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesFetched counts raw candidates returned per news provider.
	CandidatesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policybrief_candidates_fetched_total",
		Help: "Raw candidates fetched, by provider.",
	}, []string{"provider"})

	// FetchFailures counts failed news provider calls.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policybrief_fetch_failures_total",
		Help: "Failed news provider fetches, by provider.",
	}, []string{"provider"})

	// SanitizerRejects counts generated narratives rejected by the sanitizer.
	SanitizerRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policybrief_sanitizer_rejects_total",
		Help: "Narratives rejected by the sanitizer, by reason.",
	}, []string{"reason"})

	// NarrativeFallbacks counts fallback narratives shipped after retry
	// exhaustion.
	NarrativeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policybrief_narrative_fallbacks_total",
		Help: "Fallback narratives used after retries, by reason.",
	}, []string{"reason"})

	// GenerationAttempts counts individual generation attempts by outcome.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policybrief_generation_attempts_total",
		Help: "Narrative generation attempts, by outcome.",
	}, []string{"outcome"})

	// EditionsCreated counts editions persisted by the curator.
	EditionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "policybrief_editions_created_total",
		Help: "Editions created by the curator.",
	})
)
