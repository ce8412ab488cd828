package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"policybrief/internal/core"
)

func TestAPIProviderFetch(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "Reuters"},
					"title": "Senate passes appropriations bill",
					"description": "Federal spending measure moves forward",
					"url": "https://example.com/senate",
					"urlToImage": "https://example.com/senate.jpg",
					"publishedAt": "2025-06-15T08:00:00Z"
				},
				{
					"source": {"name": "Politico"},
					"title": "Agency issues new rule",
					"description": "Regulation takes effect next month",
					"url": "https://example.com/agency",
					"urlToImage": "",
					"publishedAt": "not-a-timestamp"
				}
			]
		}`))
	}))
	defer server.Close()

	p := NewAPIProvider("test-key", server.URL, 50, 5*time.Second, time.Millisecond)
	candidates, err := p.Fetch(context.Background(), Query{
		Terms: "policy",
		From:  time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC),
		To:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/everything" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotQuery != "policy" {
		t.Errorf("query param = %q", gotQuery)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if first.Title != "Senate passes appropriations bill" {
		t.Errorf("title = %q", first.Title)
	}
	if first.SourceName != "Reuters" {
		t.Errorf("source = %q", first.SourceName)
	}
	if !first.PublishedAt.Equal(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("published = %v", first.PublishedAt)
	}
	// A bad timestamp degrades to the zero time rather than dropping the item.
	if !candidates[1].PublishedAt.IsZero() {
		t.Errorf("expected zero publish time, got %v", candidates[1].PublishedAt)
	}
}

func TestAPIProviderFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewAPIProvider("test-key", server.URL, 50, 5*time.Second, time.Millisecond)
	if _, err := p.Fetch(context.Background(), Query{Terms: "policy"}); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}

func TestAPIProviderFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKeyInvalid"}`))
	}))
	defer server.Close()

	p := NewAPIProvider("bad-key", server.URL, 50, 5*time.Second, time.Millisecond)
	_, err := p.Fetch(context.Background(), Query{Terms: "policy"})
	if err == nil {
		t.Fatal("expected error on API-level failure")
	}
}

type stubProvider struct {
	name       string
	candidates []core.Candidate
	err        error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, q Query) ([]core.Candidate, error) {
	return s.candidates, s.err
}

func TestMultiProviderMergesResults(t *testing.T) {
	a := &stubProvider{name: "a", candidates: []core.Candidate{{Title: "one"}, {Title: "two"}}}
	b := &stubProvider{name: "b", candidates: []core.Candidate{{Title: "three"}}}

	m := NewMultiProvider(a, b)
	candidates, err := m.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("expected 3 merged candidates, got %d", len(candidates))
	}
}

func TestMultiProviderPartialFailure(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("down")}
	b := &stubProvider{name: "b", candidates: []core.Candidate{{Title: "three"}}}

	m := NewMultiProvider(a, b)
	candidates, err := m.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("expected 1 candidate, got %d", len(candidates))
	}
}

func TestMultiProviderTotalFailure(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("down")}
	b := &stubProvider{name: "b", err: errors.New("also down")}

	m := NewMultiProvider(a, b)
	if _, err := m.Fetch(context.Background(), Query{}); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}
