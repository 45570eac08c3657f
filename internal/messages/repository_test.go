package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestSend(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO messages").
		WithArgs(pgxmock.AnyArg(), "pat-1", "doc-1", "When should I take the medication?").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	msg, err := repo.Send(context.Background(), "pat-1", &SendRequest{
		RecipientID: "doc-1",
		Body:        "  When should I take the medication?  ",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.Body != "When should I take the medication?" {
		t.Errorf("body not trimmed: %q", msg.Body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSendRejectsSelfMessage(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Send(context.Background(), "u-1", &SendRequest{RecipientID: "u-1", Body: "hi"})
	if !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got %v", err)
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Send(context.Background(), "u-1", &SendRequest{RecipientID: "u-2", Body: "   "})
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestConversation(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "sender_id", "recipient_id", "body", "created_at"}).
		AddRow("m-1", "pat-1", "doc-1", "hello", now.Add(-time.Hour)).
		AddRow("m-2", "doc-1", "pat-1", "hello back", now)
	mock.ExpectQuery("SELECT id, sender_id").
		WithArgs("pat-1", "doc-1").
		WillReturnRows(rows)

	msgs, err := repo.Conversation(context.Background(), "pat-1", "doc-1")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-1" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestInbox(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"partner_id", "body", "created_at"}).
		AddRow("doc-1", "hello back", time.Now().UTC())
	mock.ExpectQuery("SELECT DISTINCT ON").
		WithArgs("pat-1").
		WillReturnRows(rows)

	threads, err := repo.Inbox(context.Background(), "pat-1")
	if err != nil {
		t.Fatalf("inbox failed: %v", err)
	}
	if len(threads) != 1 || threads[0].PartnerID != "doc-1" {
		t.Fatalf("unexpected threads: %+v", threads)
	}
}
