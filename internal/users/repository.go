package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
)

// DB is the slice of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores account records in the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgx.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("users: pgx pool required")
	}
	return &Repository{db: db}
}

const userColumns = `id, full_name, email, phone, role, created_at`

// List returns all accounts ordered by registration time, newest first.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// GetByID fetches a single account.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &u, nil
}

// UpdateRole assigns a new role to the account.
func (r *Repository) UpdateRole(ctx context.Context, id string, role identity.Role) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("users: role update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
