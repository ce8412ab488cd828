// Package sanitize validates and normalizes generated narrative text before it
// is attached to an article. Validation never returns an error: an invalid
// narrative is reported through a non-empty rejection reason so the caller can
// retry or fall back.
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"policybrief/internal/core"
	"policybrief/internal/logger"
	"policybrief/internal/metrics"
)

// Reason is a rejection reason code. The empty reason means the narrative was
// accepted.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonTooShort       Reason = "too_short"
	ReasonTooLong        Reason = "too_long"
	ReasonListFormat     Reason = "list_format"
	ReasonFabricatedYear Reason = "fabricated_year"
)

var (
	bulletLine   = regexp.MustCompile(`^\s*[-*]\s`)
	numberedLine = regexp.MustCompile(`^\s*\d+\.\s`)
	yearPattern  = regexp.MustCompile(`\b(\d{4})\b`)
)

// Sanitizer enforces word-count bounds, prose-only formatting and
// anti-hallucination year checks on generated narratives.
type Sanitizer struct {
	minWords int
	maxWords int
	now      func() time.Time
}

// New creates a sanitizer with inclusive word-count bounds.
func New(minWords, maxWords int) *Sanitizer {
	return &Sanitizer{minWords: minWords, maxWords: maxWords, now: time.Now}
}

// WithClock overrides the sanitizer's clock. Used by tests to pin the recent
// year window.
func (s *Sanitizer) WithClock(now func() time.Time) *Sanitizer {
	s.now = now
	return s
}

// Sanitize normalizes raw generated text and validates it against the source
// candidate. It returns the cleaned text and an empty reason on acceptance, or
// an empty string and the rejection reason otherwise. Gates short-circuit on
// the first failure.
func (s *Sanitizer) Sanitize(src core.Candidate, raw string) (string, Reason) {
	cleaned := normalize(raw)

	if reason := s.validate(src, cleaned); reason != ReasonNone {
		metrics.SanitizerRejects.WithLabelValues(string(reason)).Inc()
		logger.Warn("narrative rejected", "reason", string(reason), "title", src.Title)
		return "", reason
	}
	return cleaned, ReasonNone
}

func (s *Sanitizer) validate(src core.Candidate, cleaned string) Reason {
	words := len(strings.Fields(cleaned))
	if words < s.minWords {
		return ReasonTooShort
	}
	if words > s.maxWords {
		return ReasonTooLong
	}

	for _, line := range strings.Split(cleaned, "\n") {
		if bulletLine.MatchString(line) || numberedLine.MatchString(line) {
			return ReasonListFormat
		}
	}

	if s.hasFabricatedYear(src, cleaned) {
		return ReasonFabricatedYear
	}
	return ReasonNone
}

// hasFabricatedYear flags 4-digit years from currentYear-5 onward, futures
// included, that appear in the narrative but nowhere in the source material.
// Only years older than the window are treated as historical context and left
// alone.
func (s *Sanitizer) hasFabricatedYear(src core.Candidate, cleaned string) bool {
	currentYear := s.now().Year()

	sourceMaterial := src.Title + " " + src.Description
	if !src.PublishedAt.IsZero() {
		sourceMaterial += " " + src.PublishedAt.Format(time.RFC3339)
	}

	for _, match := range yearPattern.FindAllStringSubmatch(cleaned, -1) {
		year, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if year < currentYear-5 {
			continue
		}
		if !strings.Contains(sourceMaterial, match[1]) {
			return true
		}
	}
	return false
}

// normalize strips carriage returns, trims each line, drops blank lines and
// rejoins paragraphs with a blank-line separator.
func normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r", "")

	var paragraphs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
