package store

import (
	"testing"
	"time"

	"policybrief/internal/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCacheRoundTrip(t *testing.T) {
	s := testStore(t)

	batch := []core.Candidate{
		{
			Title:       "Senate passes appropriations bill",
			Description: "Federal spending measure moves forward",
			URL:         "https://example.com/senate",
			SourceName:  "Reuters",
			PublishedAt: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
		},
	}
	if err := s.CacheCandidates("policy", "2025-06-15", batch); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}

	got, err := s.GetCachedCandidates("policy", "2025-06-15", time.Hour)
	if err != nil {
		t.Fatalf("GetCachedCandidates failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Title != batch[0].Title {
		t.Errorf("title = %q, expected %q", got[0].Title, batch[0].Title)
	}
	if !got[0].PublishedAt.Equal(batch[0].PublishedAt) {
		t.Errorf("published = %v, expected %v", got[0].PublishedAt, batch[0].PublishedAt)
	}
}

func TestCacheMiss(t *testing.T) {
	s := testStore(t)

	got, err := s.GetCachedCandidates("policy", "2025-06-15", time.Hour)
	if err != nil {
		t.Fatalf("GetCachedCandidates failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on cache miss, got %v", got)
	}
}

func TestCacheKeyIsolation(t *testing.T) {
	s := testStore(t)

	if err := s.CacheCandidates("policy", "2025-06-15", []core.Candidate{{Title: "one"}}); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}

	if got, _ := s.GetCachedCandidates("policy", "2025-06-16", time.Hour); got != nil {
		t.Errorf("different date hit the cache: %v", got)
	}
	if got, _ := s.GetCachedCandidates("economy", "2025-06-15", time.Hour); got != nil {
		t.Errorf("different query hit the cache: %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	s := testStore(t)

	if err := s.CacheCandidates("policy", "2025-06-15", []core.Candidate{{Title: "one"}}); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}

	// A zero TTL makes every entry stale immediately.
	got, err := s.GetCachedCandidates("policy", "2025-06-15", 0)
	if err != nil {
		t.Fatalf("GetCachedCandidates failed: %v", err)
	}
	if got != nil {
		t.Errorf("stale entry served: %v", got)
	}
}

func TestCacheReplace(t *testing.T) {
	s := testStore(t)

	if err := s.CacheCandidates("policy", "2025-06-15", []core.Candidate{{Title: "old"}}); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}
	if err := s.CacheCandidates("policy", "2025-06-15", []core.Candidate{{Title: "new"}, {Title: "newer"}}); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}

	got, err := s.GetCachedCandidates("policy", "2025-06-15", time.Hour)
	if err != nil {
		t.Fatalf("GetCachedCandidates failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "new" {
		t.Errorf("replacement not served, got %v", got)
	}
}

func TestCleanupOld(t *testing.T) {
	s := testStore(t)

	if err := s.CacheCandidates("policy", "2025-06-15", []core.Candidate{{Title: "one"}}); err != nil {
		t.Fatalf("CacheCandidates failed: %v", err)
	}
	if err := s.CleanupOld(0); err != nil {
		t.Fatalf("CleanupOld failed: %v", err)
	}

	if got, _ := s.GetCachedCandidates("policy", "2025-06-15", time.Hour); got != nil {
		t.Errorf("entry survived cleanup: %v", got)
	}
}
