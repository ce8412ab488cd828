// Package curator orchestrates the edition curation pipeline:
// fetch → select → analyze → persist, one dated edition per run.
package curator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"policybrief/internal/core"
	"policybrief/internal/logger"
	"policybrief/internal/metrics"
	"policybrief/internal/news"
	"policybrief/internal/persistence"
	"policybrief/internal/relevance"
	"policybrief/internal/trends"
)

// Analyzer produces a validated narrative for a candidate. Satisfied by
// *narrative.Analyzer; tests substitute a fake.
type Analyzer interface {
	Analyze(ctx context.Context, c core.Candidate) (string, error)
}

// CandidateCache is the optional local cache in front of the news providers.
// Satisfied by *store.Store.
type CandidateCache interface {
	GetCachedCandidates(query, date string, maxAge time.Duration) ([]core.Candidate, error)
	CacheCandidates(query, date string, candidates []core.Candidate) error
}

// Options holds the curation pipeline knobs.
type Options struct {
	Query         string        // news provider search terms
	LookbackHours int           // candidate publish-time window
	AnalyzeCount  int           // how many top candidates get a narrative
	CacheTTL      time.Duration // candidate cache freshness window
}

// Curator builds one edition per date from raw news candidates.
type Curator struct {
	db       persistence.Database
	provider news.Provider
	selector *relevance.Selector
	analyzer Analyzer
	tracker  *trends.Tracker
	cache    CandidateCache // may be nil
	opts     Options
	now      func() time.Time
}

// New creates a curator. cache may be nil to disable candidate caching.
func New(db persistence.Database, provider news.Provider, selector *relevance.Selector,
	analyzer Analyzer, tracker *trends.Tracker, cache CandidateCache, opts Options) *Curator {
	if opts.AnalyzeCount < 1 {
		opts.AnalyzeCount = 6
	}
	if opts.LookbackHours < 1 {
		opts.LookbackHours = 24
	}
	return &Curator{
		db:       db,
		provider: provider,
		selector: selector,
		analyzer: analyzer,
		tracker:  tracker,
		cache:    cache,
		opts:     opts,
		now:      time.Now,
	}
}

// Curate builds and persists the edition for the given YYYY-MM-DD date. It is
// idempotent: when an edition for the date already exists it is returned
// untouched. A fetch failure degrades to an edition with zero articles; a
// persistence failure propagates.
func (c *Curator) Curate(ctx context.Context, date string) (*core.Edition, error) {
	existing, err := c.db.Editions().GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to look up edition for %s: %w", date, err)
	}
	if existing != nil {
		logger.Info("edition already exists, skipping curation", "date", date, "issue", existing.IssueNumber)
		return existing, nil
	}

	candidates := c.fetchCandidates(ctx, date)

	selected := c.selector.Select(candidates, c.now())
	logger.Info("candidates selected", "date", date, "raw", len(candidates), "selected", len(selected))

	if c.tracker != nil {
		picked := make([]core.Candidate, len(selected))
		for i, s := range selected {
			picked[i] = s.Candidate
		}
		c.tracker.Record(date, picked)
	}

	articles, err := c.analyze(ctx, selected)
	if err != nil {
		return nil, err
	}

	edition, err := c.persist(ctx, date, selected, articles)
	if err != nil {
		if errors.Is(err, persistence.ErrEditionExists) {
			// Lost a race with a concurrent run; the unique constraint on
			// date is the arbiter. Serve whichever edition won.
			logger.Warn("edition insert conflicted, re-fetching existing", "date", date)
			return c.db.Editions().GetByDate(ctx, date)
		}
		return nil, err
	}

	metrics.EditionsCreated.Inc()
	logger.Info("edition curated", "date", date, "issue", edition.IssueNumber, "articles", len(articles))
	return edition, nil
}

// ForceRecurate deletes any existing edition for the date and curates a fresh
// one.
func (c *Curator) ForceRecurate(ctx context.Context, date string) (*core.Edition, error) {
	if err := c.Reset(ctx, date); err != nil {
		return nil, err
	}
	return c.Curate(ctx, date)
}

// Reset deletes the edition for a date; its articles cascade away with it.
func (c *Curator) Reset(ctx context.Context, date string) error {
	if err := c.db.Editions().DeleteByDate(ctx, date); err != nil {
		return fmt.Errorf("failed to reset edition for %s: %w", date, err)
	}
	logger.Info("edition reset", "date", date)
	return nil
}

// Publish flips the edition for a date from published to sent, after the
// external notification step has run.
func (c *Curator) Publish(ctx context.Context, date string) (*core.Edition, error) {
	edition, err := c.db.Editions().GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if edition == nil {
		return nil, fmt.Errorf("no edition exists for %s", date)
	}
	if err := c.db.Editions().UpdateStatus(ctx, edition.ID, core.EditionSent); err != nil {
		return nil, err
	}
	edition.Status = core.EditionSent
	return edition, nil
}

// fetchCandidates pulls raw candidates through the cache when one is
// configured. Provider failure is not fatal: the run continues with zero
// candidates and the edition records an empty day.
func (c *Curator) fetchCandidates(ctx context.Context, date string) []core.Candidate {
	if c.cache != nil {
		cached, err := c.cache.GetCachedCandidates(c.opts.Query, date, c.opts.CacheTTL)
		if err != nil {
			logger.Warn("candidate cache read failed", "error", err.Error())
		} else if cached != nil {
			logger.Info("candidates served from cache", "date", date, "count", len(cached))
			return cached
		}
	}

	to := c.now()
	from := to.Add(-time.Duration(c.opts.LookbackHours) * time.Hour)

	candidates, err := c.provider.Fetch(ctx, news.Query{Terms: c.opts.Query, From: from, To: to})
	if err != nil {
		logger.Warn("news fetch failed, curating empty edition", "date", date, "error", err.Error())
		return nil
	}

	if c.cache != nil && len(candidates) > 0 {
		if err := c.cache.CacheCandidates(c.opts.Query, date, candidates); err != nil {
			logger.Warn("candidate cache write failed", "error", err.Error())
		}
	}
	return candidates
}

// analyze runs the retry-controlled narrative generation for the first
// AnalyzeCount candidates, strictly in ranked order, and builds the full
// article list. Analyzed items get ordinals 1..K and publish immediately; the
// rest of the ranked list is queued without a narrative.
func (c *Curator) analyze(ctx context.Context, selected []relevance.Scored) ([]core.Article, error) {
	articles := make([]core.Article, 0, len(selected))

	for i, s := range selected {
		article := core.Article{
			ID:          uuid.NewString(),
			Title:       s.Candidate.Title,
			Description: s.Candidate.Description,
			SourceName:  s.Candidate.SourceName,
			URL:         s.Candidate.URL,
			ImageURL:    s.Candidate.ImageURL,
			PublishedAt: s.Candidate.PublishedAt,
			Score:       s.Score,
			Status:      core.ArticleQueued,
		}

		if i < c.opts.AnalyzeCount {
			analysis, err := c.analyzer.Analyze(ctx, s.Candidate)
			if err != nil {
				// Only auth failures escape the analyzer; no point burning
				// the rest of the batch on dead credentials.
				return nil, fmt.Errorf("analysis aborted at rank %d: %w", i+1, err)
			}
			position := i + 1
			article.Position = &position
			article.Analysis = &analysis
			article.WordCount = len(strings.Fields(analysis))
			article.Status = core.ArticlePublished
		}

		articles = append(articles, article)
	}
	return articles, nil
}

// persist allocates the next issue number and writes the edition plus all its
// articles in a single transaction.
func (c *Curator) persist(ctx context.Context, date string, selected []relevance.Scored, articles []core.Article) (*core.Edition, error) {
	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	issue, err := tx.Editions().NextIssueNumber(ctx)
	if err != nil {
		return nil, err
	}

	edition := &core.Edition{
		ID:          uuid.NewString(),
		Date:        date,
		IssueNumber: issue,
		Status:      core.EditionPublished,
		CreatedAt:   c.now().UTC(),
	}
	if len(selected) > 0 {
		featured := selected[0].Candidate.Title
		edition.FeaturedTitle = &featured
	}

	if err := tx.Editions().Create(ctx, edition); err != nil {
		return nil, err
	}

	for i := range articles {
		articles[i].EditionID = edition.ID
	}
	if err := tx.Articles().BulkInsert(ctx, articles); err != nil {
		return nil, fmt.Errorf("failed to persist articles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit edition: %w", err)
	}
	return edition, nil
}
