package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/internal/notify"
	"github.com/daryeelcare/caafimaad-platform/internal/observability/metrics"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("caafimaad.internal.bookings")

// ValidationError aggregates the draft's field errors in rule order. The
// first entry is what the form surfaces.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "bookings: invalid draft"
	}
	return e.Fields[0].Message
}

// Store is the persistence surface the service needs. *Repository
// implements it; tests substitute stubs.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Booking, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status, notes string) error
	UpdatePayment(ctx context.Context, id string, method, number string, amount int) error
	Delete(ctx context.Context, id string) error
}

// Notifier sends patient emails on lifecycle events. Best effort only.
type Notifier interface {
	BookingCreated(ctx context.Context, evt notify.BookingEvent)
	BookingConfirmed(ctx context.Context, evt notify.BookingEvent)
	BookingCancelled(ctx context.Context, evt notify.BookingEvent)
}

// Service drives the booking lifecycle.
type Service struct {
	store     Store
	resolver  *Resolver
	processor payments.Processor
	notifier  Notifier
	metrics   *metrics.BookingMetrics
	fee       int
	location  *time.Location
	now       func() time.Time
	logger    *logging.Logger
}

// NewService constructs the booking service.
func NewService(store Store, resolver *Resolver, processor payments.Processor, notifier Notifier, m *metrics.BookingMetrics, fee int, location *time.Location, logger *logging.Logger) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if resolver == nil {
		panic("bookings: resolver required")
	}
	if processor == nil {
		panic("bookings: payment processor required")
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		resolver:  resolver,
		processor: processor,
		notifier:  notifier,
		metrics:   m,
		fee:       fee,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AvailableSlots exposes the resolver through the service boundary.
func (s *Service) AvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	start := s.now()
	slots, err := s.resolver.AvailableSlots(ctx, doctorID, date)
	s.metrics.ObserveAvailabilityLatency(time.Since(start).Seconds())
	return slots, err
}

// Create validates the draft, captures the (simulated) payment and inserts
// the booking in pending state. The backend is the sole arbiter of slot
// races: a conflicting insert returns ErrSlotTaken and the caller should
// re-fetch availability.
func (s *Service) Create(ctx context.Context, patient identity.Principal, draft *Draft) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("caafimaad.doctor_id", draft.DoctorID),
		attribute.String("caafimaad.date", draft.AppointmentDate),
	)

	var slots []string
	if strings.TrimSpace(draft.DoctorID) != "" && strings.TrimSpace(draft.AppointmentDate) != "" {
		var err error
		slots, err = s.AvailableSlots(ctx, draft.DoctorID, draft.AppointmentDate)
		if err != nil {
			if errors.Is(err, ErrInvalidDate) {
				s.metrics.ObserveCreated("validation_failed")
				return nil, &ValidationError{Fields: []FieldError{{Field: "appointmentDate", Message: "invalid date"}}}
			}
			span.RecordError(err)
			return nil, fmt.Errorf("bookings: availability check: %w", err)
		}
	}

	if errs := ValidateDraft(draft, slots); len(errs) > 0 {
		s.metrics.ObserveCreated("validation_failed")
		return nil, &ValidationError{Fields: errs}
	}

	day, err := time.ParseInLocation(DateLayout, draft.AppointmentDate, s.location)
	if err != nil {
		s.metrics.ObserveCreated("validation_failed")
		return nil, &ValidationError{Fields: []FieldError{{Field: "appointmentDate", Message: "invalid date"}}}
	}
	today := s.now().In(s.location)
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)
	if day.Before(todayStart) {
		s.metrics.ObserveCreated("validation_failed")
		return nil, ErrDateInPast
	}

	amount := draft.PaymentAmount
	if amount == 0 {
		amount = s.fee
	}
	id := uuid.NewString()
	ref, err := s.processor.Capture(ctx, id, payments.Details{
		Method: draft.PaymentMethod,
		Number: draft.PaymentNumber,
		Amount: amount,
	})
	if err != nil {
		s.metrics.ObserveCreated("payment_failed")
		span.RecordError(err)
		return nil, err
	}

	booking := &Booking{
		ID:              id,
		PatientID:       patient.UserID,
		DoctorID:        draft.DoctorID,
		AppointmentDate: draft.AppointmentDate,
		AppointmentTime: draft.AppointmentTime,
		Reason:          draft.Reason,
		Symptoms:        draft.Symptoms,
		Notes:           draft.Notes,
		IsEmergency:     draft.IsEmergency,
		ContactPhone:    draft.ContactPhone,
		ContactEmail:    draft.ContactEmail,
		Status:          StatusPending,
		PaymentMethod:   draft.PaymentMethod,
		PaymentNumber:   draft.PaymentNumber,
		PaymentAmount:   amount,
		PaymentRef:      ref,
	}
	if err := s.store.Create(ctx, booking); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotConflict()
			s.metrics.ObserveCreated("slot_conflict")
			return nil, err
		}
		span.RecordError(err)
		return nil, err
	}

	s.resolver.Invalidate(ctx, booking.DoctorID, booking.AppointmentDate)
	s.metrics.ObserveCreated("success")
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"doctor_id", booking.DoctorID,
		"date", booking.AppointmentDate,
		"slot", booking.AppointmentTime,
		"emergency", booking.IsEmergency,
	)
	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, s.event(booking))
	}
	return booking, nil
}

// UpdateStatus applies a staff-driven lifecycle transition, attaching the
// optional doctor note. Re-applying the booking's current status is a
// no-op rather than an error, which makes terminal states idempotent.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, notes string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.update_status")
	defer span.End()
	span.SetAttributes(attribute.String("caafimaad.booking_id", id))

	if !next.Valid() {
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "unknown status"}}}
	}

	booking, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == next {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
	}

	notes = strings.TrimSpace(notes)
	if err := s.store.UpdateStatus(ctx, id, next, notes); err != nil {
		span.RecordError(err)
		return nil, err
	}

	from := booking.Status
	booking.Status = next
	if notes != "" {
		booking.Notes = notes
	}
	if next == StatusCancelled {
		// The slot is free again.
		s.resolver.Invalidate(ctx, booking.DoctorID, booking.AppointmentDate)
	}
	s.metrics.ObserveTransition(string(from), string(next))
	s.logger.Info("booking status updated", "booking_id", id, "from", from, "to", next)

	if s.notifier != nil {
		switch next {
		case StatusConfirmed:
			s.notifier.BookingConfirmed(ctx, s.event(booking))
		case StatusCancelled:
			s.notifier.BookingCancelled(ctx, s.event(booking))
		}
	}
	return booking, nil
}

// CancelOwn lets a patient cancel their own still-pending booking.
// Cancelling an already-cancelled booking is a no-op.
func (s *Service) CancelOwn(ctx context.Context, patient identity.Principal, id string) (*Booking, error) {
	booking, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.PatientID != patient.UserID {
		return nil, ErrNotOwner
	}
	if booking.Status == StatusCancelled {
		return booking, nil
	}
	if booking.Status != StatusPending {
		return nil, ErrNotCancellable
	}
	if err := s.store.UpdateStatus(ctx, id, StatusCancelled, ""); err != nil {
		return nil, err
	}
	booking.Status = StatusCancelled
	s.resolver.Invalidate(ctx, booking.DoctorID, booking.AppointmentDate)
	s.metrics.ObserveTransition(string(StatusPending), string(StatusCancelled))
	s.logger.Info("booking cancelled by patient", "booking_id", id)
	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, s.event(booking))
	}
	return booking, nil
}

// UpdatePayment is the correction path for payment fields. It never
// changes the booking status and is not a new payment attempt.
func (s *Service) UpdatePayment(ctx context.Context, caller identity.Principal, id string, details payments.Details) (*Booking, error) {
	booking, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && booking.PatientID != caller.UserID {
		return nil, ErrNotOwner
	}
	if details.Amount == 0 {
		details.Amount = s.fee
	}
	if err := payments.ValidateDetails(details, s.fee); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePayment(ctx, id, string(details.Method), details.Number, details.Amount); err != nil {
		return nil, err
	}
	booking.PaymentMethod = details.Method
	booking.PaymentNumber = details.Number
	booking.PaymentAmount = details.Amount
	s.logger.Info("booking payment details corrected", "booking_id", id)
	return booking, nil
}

// UserBookings is the patient's own view.
func (s *Service) UserBookings(ctx context.Context, patient identity.Principal) ([]*Booking, error) {
	return s.store.ListByPatient(ctx, patient.UserID)
}

// DoctorBookings is the doctor-scoped admin triage view.
func (s *Service) DoctorBookings(ctx context.Context, doctorID string) ([]*Booking, error) {
	return s.store.ListByDoctor(ctx, doctorID)
}

// AllBookings is the global admin view, emergencies first.
func (s *Service) AllBookings(ctx context.Context) ([]*Booking, error) {
	return s.store.ListAll(ctx)
}

// Delete removes a booking entirely. Admin-only escape hatch outside the
// lifecycle.
func (s *Service) Delete(ctx context.Context, id string) error {
	booking, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if !booking.Status.Terminal() {
		s.resolver.Invalidate(ctx, booking.DoctorID, booking.AppointmentDate)
	}
	s.logger.Info("booking hard-deleted", "booking_id", id, "status", booking.Status)
	return nil
}

func (s *Service) event(b *Booking) notify.BookingEvent {
	label := b.Doctor.Label()
	if label == "" {
		label = b.DoctorID
	}
	return notify.BookingEvent{
		BookingID:       b.ID,
		PatientEmail:    b.ContactEmail,
		DoctorLabel:     label,
		AppointmentDate: b.AppointmentDate,
		AppointmentTime: b.AppointmentTime,
		Notes:           b.Notes,
	}
}
