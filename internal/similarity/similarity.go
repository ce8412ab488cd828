// Package similarity provides token-set Jaccard similarity over normalized
// titles, used to drop near-duplicate candidates during selection.
package similarity

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\w\s]`)

// stopWords are dropped before tokenizing. Kept short on purpose: title
// comparison only needs the high-frequency glue words out of the way.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"from": true, "this": true, "are": true, "was": true, "has": true,
	"have": true, "will": true, "his": true, "her": true, "its": true,
	"after": true, "over": true, "into": true, "about": true, "amid": true,
	"new": true, "says": true, "say": true,
}

// Normalize lower-cases the input, strips punctuation, removes stop words and
// collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// tokenSet splits normalized text into a set of tokens longer than two
// characters.
func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		if len(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Similarity returns the Jaccard similarity of two normalized strings in
// [0, 1]. An empty union yields 0.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Deduper tracks normalized-title fingerprints of accepted candidates and
// flags incoming titles whose similarity to any accepted fingerprint exceeds
// the threshold. First-seen wins: the caller processes candidates in original
// order and skips the ones Seen reports as duplicates.
type Deduper struct {
	threshold    float64
	fingerprints []string
}

// NewDeduper creates a deduper with the given similarity threshold.
func NewDeduper(threshold float64) *Deduper {
	return &Deduper{threshold: threshold}
}

// Seen reports whether title is a near-duplicate of an already accepted title.
// A title that is not a duplicate is recorded as accepted.
func (d *Deduper) Seen(title string) bool {
	normalized := Normalize(title)
	for _, fp := range d.fingerprints {
		if Similarity(normalized, fp) > d.threshold {
			return true
		}
	}
	d.fingerprints = append(d.fingerprints, normalized)
	return false
}
