package articles

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var articleCols = []string{"id", "title", "summary", "body", "category", "author", "image_key", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestCreateArticle(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(pgxmock.AnyArg(), "Managing diabetes", "", "Watch your sugar intake and exercise daily.", "chronic-care", "Dr. Hodan Ali").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	article, err := repo.Create(context.Background(), &CreateArticleRequest{
		Title:    "Managing diabetes",
		Body:     "Watch your sugar intake and exercise daily.",
		Category: "chronic-care",
		Author:   "Dr. Hodan Ali",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if article.ID == "" {
		t.Error("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateArticleRequiresTitleAndBody(t *testing.T) {
	repo, _ := newMockRepo(t)

	if _, err := repo.Create(context.Background(), &CreateArticleRequest{Body: "text"}); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := repo.Create(context.Background(), &CreateArticleRequest{Title: "t"}); err == nil {
		t.Error("expected error for missing body")
	}
}

func TestListArticlesByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(articleCols).
		AddRow("a-1", "Managing diabetes", "", "body", "chronic-care", "", "", now, now)
	mock.ExpectQuery("SELECT .* FROM articles WHERE category").
		WithArgs("chronic-care").
		WillReturnRows(rows)

	articles, err := repo.List(context.Background(), "chronic-care")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Category != "chronic-care" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestUpdateArticleNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE articles").
		WithArgs("missing", "t", "", "b", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := repo.Update(context.Background(), "missing", &CreateArticleRequest{Title: "t", Body: "b"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
