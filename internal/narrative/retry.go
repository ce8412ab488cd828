package narrative

import (
	"context"
	"errors"
	"time"

	"policybrief/internal/core"
	"policybrief/internal/llm"
	"policybrief/internal/logger"
	"policybrief/internal/metrics"
	"policybrief/internal/sanitize"
)

// FallbackNarrative is the static, policy-neutral text shipped when every
// generation attempt fails or is rejected. Boilerplate beats a blocked
// pipeline.
const FallbackNarrative = `This story covers a policy development whose full impact is still coming into focus. Decisions like this one typically take effect in stages, with federal agencies and affected organizations adjusting their plans as implementation details are published. The practical consequences for households and businesses depend on how the measure is carried out and on any legal or administrative challenges that follow. Analysts generally advise watching the official guidance that agencies release in the weeks after an announcement, since that guidance determines who is affected first and what deadlines apply. Readers who want to understand where things stand should follow the original reporting linked here, along with statements from the agencies and organizations directly involved. As more information becomes available, the scope of the change, the groups most affected, and the timeline for implementation will become clearer. We will continue to track this story and update our coverage as the situation develops and further details are confirmed.`

// Fallback reason codes, logged and counted whenever the fallback ships.
const (
	fallbackGenerationError = "generation_error"
	fallbackRejected        = "validation_rejected"
)

// Analyzer runs generate→sanitize rounds with bounded retries and a fixed
// backoff, guaranteeing a non-empty narrative for every candidate. Auth
// failures are the one class that escapes: they abort the whole batch instead
// of burning the retry budget on credentials that cannot heal.
type Analyzer struct {
	generator *Generator
	sanitizer *sanitize.Sanitizer
	attempts  int
	backoff   time.Duration
	sleep     func(time.Duration)
}

// NewAnalyzer creates an analyzer with the given retry bound and backoff.
func NewAnalyzer(generator *Generator, sanitizer *sanitize.Sanitizer, attempts int, backoff time.Duration) *Analyzer {
	if attempts < 1 {
		attempts = 1
	}
	return &Analyzer{
		generator: generator,
		sanitizer: sanitizer,
		attempts:  attempts,
		backoff:   backoff,
		sleep:     time.Sleep,
	}
}

// Analyze produces a validated narrative for the candidate. The result is
// never empty: after the attempt budget is exhausted the static fallback is
// returned. Only llm.ErrAuthFailed propagates as an error.
func (a *Analyzer) Analyze(ctx context.Context, c core.Candidate) (string, error) {
	var lastReason string

	for attempt := 1; attempt <= a.attempts; attempt++ {
		raw, err := a.generator.Generate(ctx, c)
		if err != nil {
			if errors.Is(err, llm.ErrAuthFailed) {
				metrics.GenerationAttempts.WithLabelValues("auth_failed").Inc()
				return "", err
			}
			metrics.GenerationAttempts.WithLabelValues("error").Inc()
			logger.Warn("narrative generation attempt failed",
				"attempt", attempt, "title", c.Title, "error", err.Error())
			lastReason = fallbackGenerationError
		} else {
			cleaned, reason := a.sanitizer.Sanitize(c, raw)
			if reason == sanitize.ReasonNone {
				metrics.GenerationAttempts.WithLabelValues("accepted").Inc()
				return cleaned, nil
			}
			metrics.GenerationAttempts.WithLabelValues("rejected").Inc()
			lastReason = fallbackRejected
		}

		if attempt < a.attempts {
			a.sleep(a.backoff)
		}
	}

	metrics.NarrativeFallbacks.WithLabelValues(lastReason).Inc()
	logger.Warn("narrative fallback used",
		"title", c.Title, "reason", lastReason, "attempts", a.attempts)
	return FallbackNarrative, nil
}
