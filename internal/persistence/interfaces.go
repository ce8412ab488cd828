// Package persistence provides the durable store for editions and their
// articles, backed by PostgreSQL.
package persistence

import (
	"context"
	"errors"

	"policybrief/internal/core"
)

// ErrEditionExists is returned by EditionRepository.Create when an edition for
// the same date already exists. The unique constraint on the date column is
// the authority: callers should treat this as "edition already curated" and
// re-fetch rather than relying on a check-then-act lookup.
var ErrEditionExists = errors.New("edition already exists for date")

// EditionRepository handles edition persistence operations.
type EditionRepository interface {
	// Create inserts a new edition. Returns ErrEditionExists on a date
	// conflict.
	Create(ctx context.Context, edition *core.Edition) error

	// Get retrieves an edition by ID. Returns (nil, nil) when not found.
	Get(ctx context.Context, id string) (*core.Edition, error)

	// GetByDate retrieves the edition for a YYYY-MM-DD date. Returns
	// (nil, nil) when not found.
	GetByDate(ctx context.Context, date string) (*core.Edition, error)

	// List retrieves the most recent editions, newest first.
	List(ctx context.Context, limit int) ([]core.Edition, error)

	// UpdateStatus changes the lifecycle status of an edition.
	UpdateStatus(ctx context.Context, id string, status core.EditionStatus) error

	// DeleteByDate removes the edition for a date; its articles cascade.
	DeleteByDate(ctx context.Context, date string) error

	// NextIssueNumber allocates the next sequential issue number. Allocation
	// is atomic and monotonic across concurrent callers.
	NextIssueNumber(ctx context.Context) (int, error)
}

// ArticleRepository handles article persistence operations.
type ArticleRepository interface {
	// BulkInsert inserts all articles of a freshly curated edition.
	BulkInsert(ctx context.Context, articles []core.Article) error

	// ListByEdition retrieves an edition's articles, analyzed items first in
	// position order, then queued items by score.
	ListByEdition(ctx context.Context, editionID string) ([]core.Article, error)

	// UpdateStatus changes the status of a single article.
	UpdateStatus(ctx context.Context, id string, status core.ArticleStatus) error

	// UpdateAnalysis replaces the analysis text of an article and recomputes
	// its word count.
	UpdateAnalysis(ctx context.Context, id string, analysis string) error

	// Delete removes a single article.
	Delete(ctx context.Context, id string) error
}

// Transaction groups repository operations into one atomic unit.
type Transaction interface {
	Editions() EditionRepository
	Articles() ArticleRepository
	Commit() error
	Rollback() error
}

// Database is the durable store consumed by the curator and the server.
type Database interface {
	Editions() EditionRepository
	Articles() ArticleRepository
	BeginTx(ctx context.Context) (Transaction, error)
	Ping(ctx context.Context) error
	Close() error
}
