// Package news fetches raw policy news candidates from external providers.
// Two providers are implemented: a NewsAPI-style JSON endpoint and RSS feeds.
// Providers return zero candidates on failure at the call site's discretion;
// the curator treats an empty result as a degraded fetch, never a fatal error.
package news

import (
	"context"
	"time"

	"policybrief/internal/core"
	"policybrief/internal/logger"
)

// Query describes one candidate fetch.
type Query struct {
	Terms string    // provider search terms, ignored by feed providers
	From  time.Time // inclusive lower bound on publish time
	To    time.Time // inclusive upper bound on publish time
}

// Provider fetches raw candidates. Implementations make no ordering guarantee.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]core.Candidate, error)
}

// MultiProvider fans a query across several providers sequentially and merges
// the results. A provider error is logged and skipped; only the case where
// every provider fails surfaces as an error.
type MultiProvider struct {
	providers []Provider
}

// NewMultiProvider creates a provider over the given sources.
func NewMultiProvider(providers ...Provider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

func (m *MultiProvider) Name() string { return "multi" }

// Fetch queries each configured provider in order and concatenates results.
func (m *MultiProvider) Fetch(ctx context.Context, q Query) ([]core.Candidate, error) {
	var merged []core.Candidate
	var lastErr error
	failures := 0

	for _, p := range m.providers {
		candidates, err := p.Fetch(ctx, q)
		if err != nil {
			failures++
			lastErr = err
			logger.Warn("news provider failed", "provider", p.Name(), "error", err.Error())
			continue
		}
		merged = append(merged, candidates...)
	}

	if failures == len(m.providers) && lastErr != nil {
		return nil, lastErr
	}
	return merged, nil
}
