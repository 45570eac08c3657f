package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores articles in the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgx.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("articles: pgx pool required")
	}
	return &Repository{db: db}
}

const articleColumns = `id, title, summary, body, category, author, image_key, created_at, updated_at`

// Create inserts a new article.
func (r *Repository) Create(ctx context.Context, req *CreateArticleRequest) (*Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	article := &Article{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Summary:  req.Summary,
		Body:     req.Body,
		Category: req.Category,
		Author:   req.Author,
	}
	query := `
		INSERT INTO articles (id, title, summary, body, category, author)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		article.ID, article.Title, article.Summary, article.Body, article.Category, article.Author,
	).Scan(&article.CreatedAt, &article.UpdatedAt); err != nil {
		return nil, fmt.Errorf("articles: insert failed: %w", err)
	}
	return article, nil
}

// GetByID fetches a single article.
func (r *Repository) GetByID(ctx context.Context, id string) (*Article, error) {
	row := r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("articles: select failed: %w", err)
	}
	return article, nil
}

// List returns articles newest first, optionally filtered by category.
func (r *Repository) List(ctx context.Context, category string) ([]*Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("articles: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("articles: scan failed: %w", err)
		}
		out = append(out, article)
	}
	return out, rows.Err()
}

// Update replaces the article content.
func (r *Repository) Update(ctx context.Context, id string, req *CreateArticleRequest) (*Article, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		UPDATE articles
		SET title = $2, summary = $3, body = $4, category = $5, author = $6, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, req.Title, req.Summary, req.Body, req.Category, req.Author)
	if err != nil {
		return nil, fmt.Errorf("articles: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an article.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("articles: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	if err := row.Scan(
		&a.ID, &a.Title, &a.Summary, &a.Body, &a.Category, &a.Author, &a.ImageKey,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
