package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"policybrief/internal/core"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// PostgresDB implements the Database interface for PostgreSQL.
type PostgresDB struct {
	db       *sql.DB
	editions EditionRepository
	articles ArticleRepository
}

// NewPostgresDB creates a new PostgreSQL database connection.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgDB := &PostgresDB{db: db}
	pgDB.editions = &postgresEditionRepo{db: db}
	pgDB.articles = &postgresArticleRepo{db: db}
	return pgDB, nil
}

func (p *PostgresDB) Editions() EditionRepository { return p.editions }
func (p *PostgresDB) Articles() ArticleRepository { return p.articles }

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &postgresTx{
		tx:       tx,
		editions: &postgresEditionRepo{db: p.db, tx: tx},
		articles: &postgresArticleRepo{db: p.db, tx: tx},
	}, nil
}

// postgresTx implements the Transaction interface.
type postgresTx struct {
	tx       *sql.Tx
	editions EditionRepository
	articles ArticleRepository
}

func (t *postgresTx) Commit() error               { return t.tx.Commit() }
func (t *postgresTx) Rollback() error             { return t.tx.Rollback() }
func (t *postgresTx) Editions() EditionRepository { return t.editions }
func (t *postgresTx) Articles() ArticleRepository { return t.articles }

// querier is the subset of *sql.DB and *sql.Tx the repos need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// postgresEditionRepo implements EditionRepository for PostgreSQL.
type postgresEditionRepo struct {
	db *sql.DB
	tx *sql.Tx
}

func (r *postgresEditionRepo) query() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *postgresEditionRepo) Create(ctx context.Context, edition *core.Edition) error {
	query := `
		INSERT INTO editions (id, date, issue_number, status, featured_title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.query().ExecContext(ctx, query,
		edition.ID,
		edition.Date,
		edition.IssueNumber,
		string(edition.Status),
		edition.FeaturedTitle,
		edition.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return ErrEditionExists
		}
		return fmt.Errorf("failed to insert edition: %w", err)
	}
	return nil
}

const editionColumns = `id, date::text, issue_number, status, featured_title, created_at`

func scanEdition(row interface{ Scan(...interface{}) error }) (*core.Edition, error) {
	var edition core.Edition
	var status string
	err := row.Scan(
		&edition.ID,
		&edition.Date,
		&edition.IssueNumber,
		&status,
		&edition.FeaturedTitle,
		&edition.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	edition.Status = core.EditionStatus(status)
	return &edition, nil
}

func (r *postgresEditionRepo) Get(ctx context.Context, id string) (*core.Edition, error) {
	row := r.query().QueryRowContext(ctx,
		`SELECT `+editionColumns+` FROM editions WHERE id = $1`, id)

	edition, err := scanEdition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan edition: %w", err)
	}
	return edition, nil
}

func (r *postgresEditionRepo) GetByDate(ctx context.Context, date string) (*core.Edition, error) {
	row := r.query().QueryRowContext(ctx,
		`SELECT `+editionColumns+` FROM editions WHERE date = $1`, date)

	edition, err := scanEdition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan edition: %w", err)
	}
	return edition, nil
}

func (r *postgresEditionRepo) List(ctx context.Context, limit int) ([]core.Edition, error) {
	rows, err := r.query().QueryContext(ctx,
		`SELECT `+editionColumns+` FROM editions ORDER BY date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list editions: %w", err)
	}
	defer rows.Close()

	var editions []core.Edition
	for rows.Next() {
		edition, err := scanEdition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edition: %w", err)
		}
		editions = append(editions, *edition)
	}
	return editions, rows.Err()
}

func (r *postgresEditionRepo) UpdateStatus(ctx context.Context, id string, status core.EditionStatus) error {
	result, err := r.query().ExecContext(ctx,
		`UPDATE editions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update edition status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("edition %s not found", id)
	}
	return nil
}

func (r *postgresEditionRepo) DeleteByDate(ctx context.Context, date string) error {
	_, err := r.query().ExecContext(ctx, `DELETE FROM editions WHERE date = $1`, date)
	if err != nil {
		return fmt.Errorf("failed to delete edition: %w", err)
	}
	return nil
}

func (r *postgresEditionRepo) NextIssueNumber(ctx context.Context) (int, error) {
	var issue int
	err := r.query().QueryRowContext(ctx, `SELECT nextval('edition_issue_seq')`).Scan(&issue)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate issue number: %w", err)
	}
	return issue, nil
}

// postgresArticleRepo implements ArticleRepository for PostgreSQL.
type postgresArticleRepo struct {
	db *sql.DB
	tx *sql.Tx
}

func (r *postgresArticleRepo) query() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *postgresArticleRepo) BulkInsert(ctx context.Context, articles []core.Article) error {
	if len(articles) == 0 {
		return nil
	}

	query := `
		INSERT INTO articles (
			id, edition_id, title, description, source_name, url, image_url,
			published_at, position, analysis, word_count, score, status
		) VALUES `

	args := make([]interface{}, 0, len(articles)*13)
	placeholders := make([]string, 0, len(articles))
	for i, a := range articles {
		base := i * 13
		row := make([]string, 13)
		for j := range row {
			row[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")
		args = append(args,
			a.ID, a.EditionID, a.Title, a.Description, a.SourceName, a.URL,
			a.ImageURL, a.PublishedAt, a.Position, a.Analysis, a.WordCount,
			a.Score, string(a.Status),
		)
	}

	_, err := r.query().ExecContext(ctx, query+strings.Join(placeholders, ", "), args...)
	if err != nil {
		return fmt.Errorf("failed to bulk insert articles: %w", err)
	}
	return nil
}

func (r *postgresArticleRepo) ListByEdition(ctx context.Context, editionID string) ([]core.Article, error) {
	query := `
		SELECT id, edition_id, title, description, source_name, url, image_url,
		       published_at, position, analysis, word_count, score, status
		FROM articles
		WHERE edition_id = $1
		ORDER BY position ASC NULLS LAST, score DESC`

	rows, err := r.query().QueryContext(ctx, query, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		var a core.Article
		var status string
		var published sql.NullTime
		err := rows.Scan(
			&a.ID, &a.EditionID, &a.Title, &a.Description, &a.SourceName,
			&a.URL, &a.ImageURL, &published, &a.Position, &a.Analysis,
			&a.WordCount, &a.Score, &status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		a.Status = core.ArticleStatus(status)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *postgresArticleRepo) UpdateStatus(ctx context.Context, id string, status core.ArticleStatus) error {
	result, err := r.query().ExecContext(ctx,
		`UPDATE articles SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update article status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("article %s not found", id)
	}
	return nil
}

func (r *postgresArticleRepo) UpdateAnalysis(ctx context.Context, id string, analysis string) error {
	wordCount := len(strings.Fields(analysis))
	result, err := r.query().ExecContext(ctx,
		`UPDATE articles SET analysis = $1, word_count = $2 WHERE id = $3`,
		analysis, wordCount, id)
	if err != nil {
		return fmt.Errorf("failed to update article analysis: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("article %s not found", id)
	}
	return nil
}

func (r *postgresArticleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.query().ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}
