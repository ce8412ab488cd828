package handlers

import (
	"fmt"
	"os"

	"policybrief/internal/config"
	"policybrief/internal/curator"
	"policybrief/internal/llm"
	"policybrief/internal/logger"
	"policybrief/internal/narrative"
	"policybrief/internal/news"
	"policybrief/internal/persistence"
	"policybrief/internal/relevance"
	"policybrief/internal/sanitize"
	"policybrief/internal/store"
	"policybrief/internal/trends"
)

// openDatabase connects to postgres using the configured connection string,
// with DATABASE_URL as a fallback.
func openDatabase(cfg *config.Config) (*persistence.PostgresDB, error) {
	connStr := cfg.Database.ConnectionString
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		return nil, fmt.Errorf("database connection string not configured: set DATABASE_URL or database.connection_string")
	}
	return persistence.NewPostgresDB(connStr)
}

// buildCurator assembles the full curation pipeline from config. The returned
// cleanup func closes the database and cache.
func buildCurator(cfg *config.Config) (*curator.Curator, *persistence.PostgresDB, func(), error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	llmClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	var providers []news.Provider
	if cfg.News.APIKey != "" {
		providers = append(providers, news.NewAPIProvider(
			cfg.News.APIKey, cfg.News.BaseURL, cfg.News.PageSize,
			cfg.News.Timeout, cfg.News.RateLimit))
	}
	if len(cfg.News.FeedURLs) > 0 {
		providers = append(providers, news.NewFeedProvider(
			cfg.News.FeedURLs, cfg.News.UserAgent, cfg.News.Timeout))
	}
	if len(providers) == 0 {
		llmClient.Close()
		db.Close()
		return nil, nil, nil, fmt.Errorf("no news source configured: set NEWS_API_KEY or news.feed_urls")
	}

	cache, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		logger.Warn("candidate cache unavailable, continuing without it", "error", err.Error())
		cache = nil
	}

	generator := narrative.NewGenerator(llmClient, cfg.AI.Gemini.MaxTokens, cfg.AI.Gemini.Temperature)
	sanitizer := sanitize.New(cfg.Curation.MinWords, cfg.Curation.MaxWords)
	analyzer := narrative.NewAnalyzer(generator, sanitizer, cfg.Curation.RetryAttempts, cfg.Curation.RetryBackoff)
	selector := relevance.NewSelector(cfg.Curation.DedupThreshold, cfg.Curation.MaxCandidates)
	tracker := trends.NewTracker(relevance.PolicyKeywords())

	var candidateCache curator.CandidateCache
	if cache != nil {
		candidateCache = cache
	}

	cur := curator.New(db, news.NewMultiProvider(providers...), selector, analyzer, tracker, candidateCache, curator.Options{
		Query:         cfg.News.Query,
		LookbackHours: cfg.Curation.LookbackHours,
		AnalyzeCount:  cfg.Curation.AnalyzeCount,
		CacheTTL:      cfg.Cache.TTL,
	})

	cleanup := func() {
		llmClient.Close()
		if cache != nil {
			cache.Close()
		}
		db.Close()
	}
	return cur, db, cleanup, nil
}
