package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"policybrief/internal/config"
	"policybrief/internal/core"
	"policybrief/internal/curator"
	"policybrief/internal/news"
	"policybrief/internal/persistence"
	"policybrief/internal/relevance"
)

// memDB is a minimal in-memory persistence.Database for handler tests.
type memDB struct {
	mu       sync.Mutex
	editions map[string]*core.Edition
	articles map[string][]core.Article
	issueSeq int
}

func newMemDB() *memDB {
	return &memDB{
		editions: make(map[string]*core.Edition),
		articles: make(map[string][]core.Article),
	}
}

func (m *memDB) Editions() persistence.EditionRepository { return &memEditions{m} }
func (m *memDB) Articles() persistence.ArticleRepository { return &memArticles{m} }
func (m *memDB) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	return &memTx{m}, nil
}
func (m *memDB) Ping(ctx context.Context) error { return nil }
func (m *memDB) Close() error                   { return nil }

type memTx struct{ db *memDB }

func (t *memTx) Editions() persistence.EditionRepository { return t.db.Editions() }
func (t *memTx) Articles() persistence.ArticleRepository { return t.db.Articles() }
func (t *memTx) Commit() error                           { return nil }
func (t *memTx) Rollback() error                         { return nil }

type memEditions struct{ db *memDB }

func (r *memEditions) Create(ctx context.Context, e *core.Edition) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.editions[e.Date]; ok {
		return persistence.ErrEditionExists
	}
	copied := *e
	r.db.editions[e.Date] = &copied
	return nil
}

func (r *memEditions) Get(ctx context.Context, id string) (*core.Edition, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.editions {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memEditions) GetByDate(ctx context.Context, date string) (*core.Edition, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.editions[date]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (r *memEditions) List(ctx context.Context, limit int) ([]core.Edition, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []core.Edition
	for _, e := range r.db.editions {
		out = append(out, *e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEditions) UpdateStatus(ctx context.Context, id string, status core.EditionStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.editions {
		if e.ID == id {
			e.Status = status
			return nil
		}
	}
	return fmt.Errorf("edition %s not found", id)
}

func (r *memEditions) DeleteByDate(ctx context.Context, date string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if e, ok := r.db.editions[date]; ok {
		delete(r.db.articles, e.ID)
		delete(r.db.editions, date)
	}
	return nil
}

func (r *memEditions) NextIssueNumber(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.issueSeq++
	return r.db.issueSeq, nil
}

type memArticles struct{ db *memDB }

func (r *memArticles) BulkInsert(ctx context.Context, articles []core.Article) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range articles {
		r.db.articles[a.EditionID] = append(r.db.articles[a.EditionID], a)
	}
	return nil
}

func (r *memArticles) ListByEdition(ctx context.Context, editionID string) ([]core.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]core.Article(nil), r.db.articles[editionID]...), nil
}

func (r *memArticles) UpdateStatus(ctx context.Context, id string, status core.ArticleStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for edID, list := range r.db.articles {
		for i := range list {
			if list[i].ID == id {
				r.db.articles[edID][i].Status = status
				return nil
			}
		}
	}
	return fmt.Errorf("article %s not found", id)
}

func (r *memArticles) UpdateAnalysis(ctx context.Context, id string, analysis string) error {
	return nil
}

func (r *memArticles) Delete(ctx context.Context, id string) error { return nil }

type staticProvider struct{ candidates []core.Candidate }

func (p *staticProvider) Name() string { return "static" }
func (p *staticProvider) Fetch(ctx context.Context, q news.Query) ([]core.Candidate, error) {
	return p.candidates, nil
}

type staticAnalyzer struct{}

func (staticAnalyzer) Analyze(ctx context.Context, c core.Candidate) (string, error) {
	return "Impact analysis for " + c.Title, nil
}

func newTestServer(t *testing.T) (*Server, *memDB) {
	t.Helper()
	return newTestServerWith(t, staticAnalyzer{})
}

func newTestServerWith(t *testing.T, analyzer curator.Analyzer) (*Server, *memDB) {
	t.Helper()
	db := newMemDB()
	provider := &staticProvider{candidates: []core.Candidate{
		{
			Title:       "Senate passes appropriations bill",
			Description: "Federal spending measure moves forward",
			URL:         "https://example.com/senate",
			SourceName:  "Reuters",
			PublishedAt: time.Now().UTC().Add(-2 * time.Hour),
		},
	}}
	cur := curator.New(db, provider, relevance.NewSelector(0.78, 20), analyzer, nil, nil, curator.Options{
		Query:         "policy",
		LookbackHours: 24,
		AnalyzeCount:  6,
	})
	srv := New(db, cur, config.Server{
		Host:           "127.0.0.1",
		Port:           0,
		AllowedOrigins: []string{"*"},
	})
	return srv, db
}

func seedEdition(t *testing.T, db *memDB, date string) *core.Edition {
	t.Helper()
	featured := "Senate passes appropriations bill"
	edition := &core.Edition{
		ID:            "ed-" + date,
		Date:          date,
		IssueNumber:   1,
		Status:        core.EditionPublished,
		FeaturedTitle: &featured,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.Editions().Create(context.Background(), edition); err != nil {
		t.Fatalf("seeding edition: %v", err)
	}
	position := 1
	analysis := "Impact analysis text"
	err := db.Articles().BulkInsert(context.Background(), []core.Article{
		{
			ID:        "art-1",
			EditionID: edition.ID,
			Title:     featured,
			Position:  &position,
			Analysis:  &analysis,
			Status:    core.ArticlePublished,
		},
	})
	if err != nil {
		t.Fatalf("seeding articles: %v", err)
	}
	return edition
}

func doRequest(srv *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", rec.Code)
	}
}

func TestGetEdition(t *testing.T) {
	srv, db := newTestServer(t)
	seedEdition(t, db, "2025-06-15")

	rec := doRequest(srv, http.MethodGet, "/api/editions/2025-06-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var resp editionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Date != "2025-06-15" {
		t.Errorf("date = %q", resp.Date)
	}
	if len(resp.Articles) != 1 {
		t.Errorf("articles = %d, expected 1", len(resp.Articles))
	}
}

func TestGetEditionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/editions/2025-06-15")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestGetEditionBadDate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/editions/june-15")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestCronCurate(t *testing.T) {
	srv, db := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/cron/curate?date=2025-06-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body %s", rec.Code, rec.Body.String())
	}

	var edition core.Edition
	if err := json.Unmarshal(rec.Body.Bytes(), &edition); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if edition.Date != "2025-06-15" {
		t.Errorf("date = %q", edition.Date)
	}

	// A second trigger is idempotent.
	rec = doRequest(srv, http.MethodPost, "/api/cron/curate?date=2025-06-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("second trigger status = %d", rec.Code)
	}
	var second core.Edition
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if second.ID != edition.ID {
		t.Errorf("second trigger created a new edition")
	}

	if len(db.editions) != 1 {
		t.Errorf("expected 1 stored edition, got %d", len(db.editions))
	}
}

// contextAwareAnalyzer fails the way a real generation call would when its
// context is already canceled, and records whether that happened.
type contextAwareAnalyzer struct {
	sawCanceled bool
}

func (a *contextAwareAnalyzer) Analyze(ctx context.Context, c core.Candidate) (string, error) {
	if err := ctx.Err(); err != nil {
		a.sawCanceled = true
		return "", err
	}
	return "Impact analysis for " + c.Title, nil
}

func TestCronCurateSurvivesCallerDisconnect(t *testing.T) {
	analyzer := &contextAwareAnalyzer{}
	srv, db := newTestServerWith(t, analyzer)

	// The caller is already gone when the handler runs.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/curate?date=2025-06-15", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body %s", rec.Code, rec.Body.String())
	}
	if analyzer.sawCanceled {
		t.Error("curation pipeline ran on the canceled request context")
	}
	if len(db.editions) != 1 {
		t.Errorf("expected 1 stored edition, got %d", len(db.editions))
	}
}

func TestCronCurateBadDate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/cron/curate?date=15-06-2025")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestPublishEditionEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedEdition(t, db, "2025-06-15")

	rec := doRequest(srv, http.MethodPost, "/api/editions/2025-06-15/publish")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	stored, _ := db.Editions().GetByDate(context.Background(), "2025-06-15")
	if stored.Status != core.EditionSent {
		t.Errorf("stored status = %q, expected %q", stored.Status, core.EditionSent)
	}
}

func TestResetEditionEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedEdition(t, db, "2025-06-15")

	rec := doRequest(srv, http.MethodDelete, "/api/editions/2025-06-15")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, expected 204", rec.Code)
	}

	stored, _ := db.Editions().GetByDate(context.Background(), "2025-06-15")
	if stored != nil {
		t.Error("edition survived reset")
	}
}

func TestRejectArticleEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	edition := seedEdition(t, db, "2025-06-15")

	rec := doRequest(srv, http.MethodPost, "/api/articles/art-1/reject")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	articles, _ := db.Articles().ListByEdition(context.Background(), edition.ID)
	if articles[0].Status != core.ArticleRejected {
		t.Errorf("article status = %q, expected %q", articles[0].Status, core.ArticleRejected)
	}
}

func TestListEditionsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/editions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}
