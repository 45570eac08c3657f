package bookings

import (
	"context"
	"errors"
	"fmt"

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

// Repository provides persistence for bookings.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by pgx.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: db}
}

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (doctor_id, appointment_date, appointment_time) for
// non-cancelled bookings.
const uniqueViolation = "23505"

// Create inserts a booking row. A conflicting live booking for the same
// slot surfaces as ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, patient_id, doctor_id, appointment_date, appointment_time,
			reason, symptoms, notes, is_emergency, contact_phone, contact_email,
			status, payment_method, payment_number, payment_amount, payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		b.ID, b.PatientID, b.DoctorID, b.AppointmentDate, b.AppointmentTime,
		b.Reason, b.Symptoms, b.Notes, b.IsEmergency, b.ContactPhone, b.ContactEmail,
		b.Status, b.PaymentMethod, b.PaymentNumber, b.PaymentAmount, b.PaymentRef,
	).Scan(&b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("bookings: insert failed: %w", err)
	}
	return nil
}

const bookingColumns = `b.id, b.patient_id, b.doctor_id, b.appointment_date, b.appointment_time,
	b.reason, b.symptoms, b.notes, b.is_emergency, b.contact_phone, b.contact_email,
	b.status, b.payment_method, b.payment_number, b.payment_amount, b.payment_ref, b.created_at,
	d.id, d.full_name, d.specialty, d.workplace`

const bookingFrom = ` FROM bookings b LEFT JOIN doctors d ON d.id = b.doctor_id `

// GetByID fetches a single booking with its doctor summary when the
// doctor record still exists.
func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+`WHERE b.id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return b, nil
}

// ListByPatient returns the patient's own bookings, newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+bookingFrom+`WHERE b.patient_id = $1 ORDER BY b.created_at DESC`, patientID)
}

// ListByDoctor returns a doctor's bookings ordered by appointment.
func (r *Repository) ListByDoctor(ctx context.Context, doctorID string) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+bookingFrom+`WHERE b.doctor_id = $1 ORDER BY b.appointment_date, b.appointment_time`, doctorID)
}

// ListAll returns every booking for the admin view, emergencies first.
func (r *Repository) ListAll(ctx context.Context) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+bookingFrom+`ORDER BY b.is_emergency DESC, b.created_at DESC`)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookedSlots returns the slot labels held by non-cancelled bookings for
// the doctor on the given date.
func (r *Repository) BookedSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT appointment_time FROM bookings
		 WHERE doctor_id = $1 AND appointment_date = $2 AND status <> $3`,
		doctorID, date, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("bookings: booked slots query failed: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("bookings: booked slots scan failed: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// UpdateStatus sets the booking status, appending the doctor note when one
// is supplied.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, notes string) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if notes != "" {
		tag, err = r.db.Exec(ctx, `UPDATE bookings SET status = $2, notes = $3 WHERE id = $1`, id, status, notes)
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	}
	if err != nil {
		return fmt.Errorf("bookings: status update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePayment corrects the payment fields on an existing booking without
// touching its status.
func (r *Repository) UpdatePayment(ctx context.Context, id string, method, number string, amount int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET payment_method = $2, payment_number = $3, payment_amount = $4 WHERE id = $1`,
		id, method, number, amount)
	if err != nil {
		return fmt.Errorf("bookings: payment update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the booking entirely. Admin escape hatch; bypasses the
// lifecycle.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bookings: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var (
		b                              Booking
		docID, docName, docSpec, docWp *string
	)
	// appointment_date is stored as text in DateLayout, the same value the
	// app writes, so it scans straight into the string field.
	if err := row.Scan(
		&b.ID, &b.PatientID, &b.DoctorID, &b.AppointmentDate, &b.AppointmentTime,
		&b.Reason, &b.Symptoms, &b.Notes, &b.IsEmergency, &b.ContactPhone, &b.ContactEmail,
		&b.Status, &b.PaymentMethod, &b.PaymentNumber, &b.PaymentAmount, &b.PaymentRef, &b.CreatedAt,
		&docID, &docName, &docSpec, &docWp,
	); err != nil {
		return nil, err
	}
	if docID != nil {
		summary := &DoctorSummary{ID: *docID}
		if docName != nil {
			summary.FullName = *docName
		}
		if docSpec != nil {
			summary.Specialty = *docSpec
		}
		if docWp != nil {
			summary.Workplace = *docWp
		}
		b.Doctor = RefPopulated(summary)
	} else {
		b.Doctor = RefByID(b.DoctorID)
	}
	return &b, nil
}
