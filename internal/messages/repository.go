package messages

import (
	"context"
	"fmt"
	"time"

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

// Repository stores direct messages in the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgx.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("messages: pgx pool required")
	}
	return &Repository{db: db}
}

// Send inserts a message from sender to recipient.
func (r *Repository) Send(ctx context.Context, senderID string, req *SendRequest) (*Message, error) {
	if err := req.Validate(senderID); err != nil {
		return nil, err
	}

	msg := &Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	var createdAt time.Time
	if err := r.db.QueryRow(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, body) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Body,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("messages: insert failed: %w", err)
	}
	msg.CreatedAt = createdAt
	return msg, nil
}

// Conversation returns the full exchange between two accounts, oldest
// first.
func (r *Repository) Conversation(ctx context.Context, userID, partnerID string) ([]*Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sender_id, recipient_id, body, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at`,
		userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("messages: conversation failed: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messages: scan failed: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Inbox returns one thread per correspondent, most recently active first.
func (r *Repository) Inbox(ctx context.Context, userID string) ([]*Thread, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (partner_id) partner_id, body, created_at
		FROM (
			SELECT CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS partner_id,
				body, created_at
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
		) t
		ORDER BY partner_id, created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("messages: inbox failed: %w", err)
	}
	defer rows.Close()

	var out []*Thread
	for rows.Next() {
		var th Thread
		if err := rows.Scan(&th.PartnerID, &th.LastBody, &th.LastAt); err != nil {
			return nil, fmt.Errorf("messages: scan failed: %w", err)
		}
		out = append(out, &th)
	}
	return out, rows.Err()
}
