package news

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"policybrief/internal/core"
	"policybrief/internal/logger"
	"policybrief/internal/metrics"
)

// FeedProvider fetches candidates from a fixed set of RSS/Atom feeds. Feed
// descriptions frequently carry embedded HTML, so they are stripped down to
// plain text before entering the pipeline.
type FeedProvider struct {
	feedURLs  []string
	userAgent string
	parser    *gofeed.Parser
	stripper  *bluemonday.Policy
}

// NewFeedProvider creates an RSS provider over the given feed URLs.
func NewFeedProvider(feedURLs []string, userAgent string, timeout time.Duration) *FeedProvider {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	if timeout > 0 {
		parser.Client = &http.Client{Timeout: timeout}
	}
	return &FeedProvider{
		feedURLs:  feedURLs,
		userAgent: userAgent,
		parser:    parser,
		stripper:  bluemonday.StrictPolicy(),
	}
}

func (p *FeedProvider) Name() string { return "rss" }

// Fetch parses every configured feed and returns items published inside the
// query window. A feed that fails to parse is logged and skipped; the
// remaining feeds still contribute candidates.
func (p *FeedProvider) Fetch(ctx context.Context, q Query) ([]core.Candidate, error) {
	var candidates []core.Candidate

	for _, feedURL := range p.feedURLs {
		feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			metrics.FetchFailures.WithLabelValues(p.Name()).Inc()
			logger.Warn("feed parse failed", "feed_url", feedURL, "error", err.Error())
			continue
		}

		sourceName := strings.TrimSpace(feed.Title)
		for _, item := range feed.Items {
			published := itemPublished(item)
			if !q.From.IsZero() && published.Before(q.From) {
				continue
			}
			if !q.To.IsZero() && published.After(q.To) {
				continue
			}

			candidates = append(candidates, core.Candidate{
				Title:       strings.TrimSpace(item.Title),
				Description: p.stripHTML(item.Description),
				URL:         item.Link,
				ImageURL:    itemImage(item),
				SourceName:  sourceName,
				PublishedAt: published,
			})
		}
	}

	metrics.CandidatesFetched.WithLabelValues(p.Name()).Add(float64(len(candidates)))
	logger.Info("feed fetch completed", "provider", p.Name(), "feeds", len(p.feedURLs), "candidates", len(candidates))

	return candidates, nil
}

func (p *FeedProvider) stripHTML(raw string) string {
	return strings.TrimSpace(p.stripper.Sanitize(raw))
}

func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
