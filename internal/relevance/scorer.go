// Package relevance scores and selects policy news candidates. Scoring is a
// keyword-weighted heuristic over title and description; selection composes
// the scorer with regex relevance gates and title deduplication.
package relevance

import (
	"strings"
	"time"

	"policybrief/internal/core"
)

// Scoring weights. Additive; final score is floored at zero.
const (
	highValuePoints = 10
	policyPoints    = 5
	exclusionPoints = -15
	recency24hBonus = 5
	recency12hBonus = 3
	trustedBonus    = 3
)

// ScoreCandidate returns a non-negative relevance score for a candidate. The
// function is pure: the reference time is a parameter so the recency bonus is
// deterministic under test.
func ScoreCandidate(c core.Candidate, now time.Time) int {
	text := strings.ToLower(c.Title + " " + c.Description)

	score := 0
	for _, phrase := range highValuePhrases {
		score += highValuePoints * strings.Count(text, phrase)
	}
	for _, kw := range policyKeywords {
		score += policyPoints * strings.Count(text, kw)
	}
	for _, kw := range exclusionKeywords {
		score += exclusionPoints * strings.Count(text, kw)
	}

	// Recency bonuses stack: an article inside 12h earns both.
	if !c.PublishedAt.IsZero() {
		age := now.Sub(c.PublishedAt)
		if age >= 0 && age <= 24*time.Hour {
			score += recency24hBonus
			if age <= 12*time.Hour {
				score += recency12hBonus
			}
		}
	}

	source := strings.ToLower(c.SourceName)
	for _, trusted := range trustedSources {
		if strings.Contains(source, trusted) {
			score += trustedBonus
			break
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
