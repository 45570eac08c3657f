// Package articles serves the health education library. Articles are
// written by staff and readable by anyone.
package articles

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound indicates the article does not exist.
var ErrNotFound = errors.New("articles: article not found")

// Article is a published health education entry.
type Article struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body"`
	Category  string    `json:"category,omitempty"`
	Author    string    `json:"author,omitempty"`
	ImageKey  string    `json:"imageKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateArticleRequest is the staff payload for creating or updating an
// article.
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Author   string `json:"author"`
}

// Validate checks required fields.
func (r *CreateArticleRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("articles: title is required")
	}
	if strings.TrimSpace(r.Body) == "" {
		return errors.New("articles: body is required")
	}
	return nil
}
