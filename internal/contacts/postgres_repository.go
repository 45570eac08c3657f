package contacts

import (
	"context"
	"errors"
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

// PostgresRepository stores contact messages in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("contacts: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateContactRequest) (*ContactMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	query := `
		INSERT INTO contact_messages (id, name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id, req.Name, req.Email, req.Phone, req.Subject, req.Message,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("contacts: insert failed: %w", err)
	}

	return &ContactMessage{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: createdAt,
	}, nil
}

// GetByID fetches a single contact message.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*ContactMessage, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, email, phone, subject, message, created_at FROM contact_messages WHERE id = $1`, id)
	var msg ContactMessage
	if err := row.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Phone, &msg.Subject, &msg.Message, &msg.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	return &msg, nil
}

// List returns all contact messages, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, email, phone, subject, message, created_at FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("contacts: list failed: %w", err)
	}
	defer rows.Close()

	var out []*ContactMessage
	for rows.Next() {
		var msg ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Phone, &msg.Subject, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("contacts: scan failed: %w", err)
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// Delete removes a contact message.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("contacts: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
