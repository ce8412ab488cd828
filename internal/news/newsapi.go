package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"policybrief/internal/core"
	"policybrief/internal/logger"
	"policybrief/internal/metrics"
)

// APIProvider fetches candidates from a NewsAPI-compatible /everything
// endpoint. Outbound calls go through a rate limiter so repeated curation runs
// stay inside the provider's quota.
type APIProvider struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
	limiter  *rate.Limiter
}

// NewAPIProvider creates a NewsAPI-style provider. minInterval is the minimum
// spacing between outbound requests.
func NewAPIProvider(apiKey, baseURL string, pageSize int, timeout, minInterval time.Duration) *APIProvider {
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return &APIProvider{
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

func (p *APIProvider) Name() string { return "newsapi" }

// apiArticle is the wire shape of one article in the provider response.
type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch queries the provider for candidates matching q.
func (p *APIProvider) Fetch(ctx context.Context, q Query) ([]core.Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Terms)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(p.pageSize))
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.UTC().Format(time.RFC3339))
	}

	fullURL := p.baseURL + "/everything?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create news request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(p.Name()).Inc()
		return nil, fmt.Errorf("failed to execute news request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchFailures.WithLabelValues(p.Name()).Inc()
		return nil, fmt.Errorf("news request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		Status   string       `json:"status"`
		Articles []apiArticle `json:"articles"`
		Message  string       `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.FetchFailures.WithLabelValues(p.Name()).Inc()
		return nil, fmt.Errorf("failed to parse news response: %w", err)
	}
	if apiResponse.Status != "ok" {
		metrics.FetchFailures.WithLabelValues(p.Name()).Inc()
		return nil, fmt.Errorf("news API error: %s", apiResponse.Message)
	}

	candidates := make([]core.Candidate, 0, len(apiResponse.Articles))
	for _, a := range apiResponse.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		candidates = append(candidates, core.Candidate{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			SourceName:  a.Source.Name,
			PublishedAt: published,
		})
	}

	metrics.CandidatesFetched.WithLabelValues(p.Name()).Add(float64(len(candidates)))
	logger.Info("news fetch completed", "provider", p.Name(), "query", q.Terms, "candidates", len(candidates))

	return candidates, nil
}
