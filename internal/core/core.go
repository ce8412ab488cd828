package core

import "time"

// EditionStatus is the lifecycle state of an edition.
type EditionStatus string

const (
	EditionPublished EditionStatus = "published"
	EditionSent      EditionStatus = "sent"
)

// ArticleStatus is the lifecycle state of an article within an edition.
type ArticleStatus string

const (
	ArticlePublished ArticleStatus = "published"
	ArticleDraft     ArticleStatus = "draft"
	ArticleQueued    ArticleStatus = "queue"
	ArticleRejected  ArticleStatus = "rejected"
)

// Candidate is a raw news item fetched from a provider, before selection and
// scoring. All fields come straight from the source; nothing is optional at
// this stage.
type Candidate struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	SourceName  string    `json:"source_name"`
	PublishedAt time.Time `json:"published_at"`
}

// Edition is one day's curated batch of articles.
type Edition struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"` // YYYY-MM-DD, unique per edition
	IssueNumber   int           `json:"issue_number"`
	Status        EditionStatus `json:"status"`
	FeaturedTitle *string       `json:"featured_title,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Article is a curated news item belonging to exactly one edition. Position
// and Analysis are set only for items selected for analysis; the rest of the
// ranked list is persisted with a queue status and neither field.
type Article struct {
	ID          string        `json:"id"`
	EditionID   string        `json:"edition_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	SourceName  string        `json:"source_name"`
	URL         string        `json:"url"`
	ImageURL    string        `json:"image_url"`
	PublishedAt time.Time     `json:"published_at"`
	Position    *int          `json:"position,omitempty"`
	Analysis    *string       `json:"analysis,omitempty"`
	WordCount   int           `json:"word_count"`
	Score       int           `json:"score"`
	Status      ArticleStatus `json:"status"`
}
