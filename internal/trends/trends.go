// Package trends tracks which policy keywords dominate each curated edition.
// The tracker is an injected collaborator with its own locking, never shared
// module state: every curation run records through the instance it was handed.
package trends

import (
	"sort"
	"strings"
	"sync"

	"policybrief/internal/core"
)

// KeywordCount is one keyword and how many selected candidates mentioned it.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Tracker accumulates keyword counts per edition date.
type Tracker struct {
	mu       sync.Mutex
	keywords []string
	byDate   map[string]map[string]int
}

// NewTracker creates a tracker that counts occurrences of the given keywords.
func NewTracker(keywords []string) *Tracker {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Tracker{
		keywords: lowered,
		byDate:   make(map[string]map[string]int),
	}
}

// Record counts keyword mentions across the selected candidates for a date.
// Calling Record again for the same date replaces that date's counts, so a
// forced re-curation does not double count.
func (t *Tracker) Record(date string, candidates []core.Candidate) {
	counts := make(map[string]int)
	for _, c := range candidates {
		text := strings.ToLower(c.Title + " " + c.Description)
		for _, kw := range t.keywords {
			if n := strings.Count(text, kw); n > 0 {
				counts[kw] += n
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.byDate[date] = counts
}

// Top returns the n most-mentioned keywords for a date, descending by count
// with ties broken alphabetically. An unknown date returns nil.
func (t *Tracker) Top(date string, n int) []KeywordCount {
	t.mu.Lock()
	counts, ok := t.byDate[date]
	t.mu.Unlock()
	if !ok {
		return nil
	}

	top := make([]KeywordCount, 0, len(counts))
	for kw, count := range counts {
		top = append(top, KeywordCount{Keyword: kw, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Keyword < top[j].Keyword
	})

	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
