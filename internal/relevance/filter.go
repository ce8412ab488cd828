package relevance

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"policybrief/internal/core"
	"policybrief/internal/logger"
	"policybrief/internal/similarity"
)

// policyRelevanceRegex gates candidates on government, legal or regulatory
// terms. A candidate must match this over title+description to survive
// selection; exclusionRegex is then applied to the title as an additional
// veto. Relevance-first precedence is deliberate: a story about a stadium
// funding bill mentions sports but is still policy news, while a match-recap
// headline never clears the relevance gate in the first place.
var policyRelevanceRegex = regexp.MustCompile(`(?i)\b(government|congress|senate|house|court|ruling|regulation|regulatory|legislation|legislative|federal|agency|policy|law|bill|statute|executive order|tariff|treaty)\b`)

// exclusionRegex vetoes sports, entertainment and celebrity headlines.
var exclusionRegex = regexp.MustCompile(`(?i)\b(touchdown|quarterback|playoffs|box office|celebrity|red carpet|grammy|oscars|halftime|world cup|premiere|trailer|nba|nfl|mlb|nhl)\b`)

// Scored pairs a candidate with its relevance score after selection.
type Scored struct {
	Candidate core.Candidate
	Score     int
}

// Selector filters, deduplicates, scores and ranks raw candidates.
type Selector struct {
	dedupThreshold float64
	maxCandidates  int
}

// NewSelector creates a selector with the given dedup threshold and result cap.
func NewSelector(dedupThreshold float64, maxCandidates int) *Selector {
	return &Selector{dedupThreshold: dedupThreshold, maxCandidates: maxCandidates}
}

// Select turns a raw candidate list into a ranked, deduplicated list capped at
// the configured maximum. Ordering is stable: ties keep original order.
func (s *Selector) Select(candidates []core.Candidate, now time.Time) []Scored {
	deduper := similarity.NewDeduper(s.dedupThreshold)

	var surviving []core.Candidate
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Description) == "" {
			logger.Debug("candidate dropped: missing title or description", "url", c.URL)
			continue
		}
		text := c.Title + " " + c.Description
		if !policyRelevanceRegex.MatchString(text) {
			logger.Debug("candidate dropped: no policy relevance", "title", c.Title)
			continue
		}
		if exclusionRegex.MatchString(c.Title) {
			logger.Debug("candidate dropped: exclusion veto", "title", c.Title)
			continue
		}
		if deduper.Seen(c.Title) {
			logger.Debug("candidate dropped: near-duplicate title", "title", c.Title)
			continue
		}
		surviving = append(surviving, c)
	}

	scored := make([]Scored, len(surviving))
	for i, c := range surviving {
		scored[i] = Scored{Candidate: c, Score: ScoreCandidate(c, now)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if s.maxCandidates > 0 && len(scored) > s.maxCandidates {
		scored = scored[:s.maxCandidates]
	}
	return scored
}
