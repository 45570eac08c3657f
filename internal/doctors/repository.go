package doctors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgxpool.Pool the repository uses. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores doctors in the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgx.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("doctors: pgx pool required")
	}
	return &Repository{db: db}
}

const doctorColumns = `id, full_name, specialty, workplace, education_level, phone, email,
	is_verified, image_key, opens_at, closes_at, slot_minutes, created_at`

// Create inserts a new directory entry.
func (r *Repository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	query := `
		INSERT INTO doctors (id, full_name, specialty, workplace, education_level, phone, email,
			is_verified, opens_at, closes_at, slot_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.FullName,
		req.Specialty,
		req.Workplace,
		req.EducationLevel,
		req.Phone,
		req.Email,
		req.IsVerified,
		req.Schedule.OpensAt,
		req.Schedule.ClosesAt,
		req.Schedule.SlotMinutes,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("doctors: insert failed: %w", err)
	}

	return &Doctor{
		ID:             id,
		FullName:       req.FullName,
		Specialty:      req.Specialty,
		Workplace:      req.Workplace,
		EducationLevel: req.EducationLevel,
		Phone:          req.Phone,
		Email:          req.Email,
		IsVerified:     req.IsVerified,
		Schedule:       req.Schedule,
		CreatedAt:      createdAt,
	}, nil
}

// GetByID fetches a single doctor.
func (r *Repository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	doc, err := scanDoctor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("doctors: select failed: %w", err)
	}
	return doc, nil
}

// List returns the directory ordered by name.
func (r *Repository) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan failed: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Update replaces the mutable attributes of an entry.
func (r *Repository) Update(ctx context.Context, id string, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		UPDATE doctors
		SET full_name = $2, specialty = $3, workplace = $4, education_level = $5,
			phone = $6, email = $7, is_verified = $8, opens_at = $9, closes_at = $10, slot_minutes = $11
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		id, req.FullName, req.Specialty, req.Workplace, req.EducationLevel,
		req.Phone, req.Email, req.IsVerified,
		req.Schedule.OpensAt, req.Schedule.ClosesAt, req.Schedule.SlotMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("doctors: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SetImageKey records the blob key of the doctor's profile image.
func (r *Repository) SetImageKey(ctx context.Context, id, key string) error {
	tag, err := r.db.Exec(ctx, `UPDATE doctors SET image_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("doctors: set image key failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a doctor. Bookings keep their doctor_id; projections fall
// back to the bare id once the row is gone.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("doctors: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (*Doctor, error) {
	var doc Doctor
	if err := row.Scan(
		&doc.ID,
		&doc.FullName,
		&doc.Specialty,
		&doc.Workplace,
		&doc.EducationLevel,
		&doc.Phone,
		&doc.Email,
		&doc.IsVerified,
		&doc.ImageKey,
		&doc.Schedule.OpensAt,
		&doc.Schedule.ClosesAt,
		&doc.Schedule.SlotMinutes,
		&doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
