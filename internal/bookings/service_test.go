package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryeelcare/caafimaad-platform/internal/doctors"
	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/internal/notify"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	bookings  map[string]*Booking
	createErr error
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]*Booking{}}
}

func (m *memStore) Create(ctx context.Context, b *Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.bookings {
		if existing.DoctorID == b.DoctorID &&
			existing.AppointmentDate == b.AppointmentDate &&
			existing.AppointmentTime == b.AppointmentTime &&
			existing.Status != StatusCancelled {
			return ErrSlotTaken
		}
	}
	b.CreatedAt = time.Now().UTC()
	copied := *b
	m.bookings[b.ID] = &copied
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memStore) ListByPatient(ctx context.Context, patientID string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		if b.PatientID == patientID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListByDoctor(ctx context.Context, doctorID string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		if b.DoctorID == doctorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, status Status, notes string) error {
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	if notes != "" {
		b.Notes = notes
	}
	return nil
}

func (m *memStore) UpdatePayment(ctx context.Context, id string, method, number string, amount int) error {
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.PaymentMethod = payments.Method(method)
	b.PaymentNumber = number
	b.PaymentAmount = amount
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

type recordingNotifier struct {
	created, confirmed, cancelled []notify.BookingEvent
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, evt notify.BookingEvent) {
	n.created = append(n.created, evt)
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, evt notify.BookingEvent) {
	n.confirmed = append(n.confirmed, evt)
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, evt notify.BookingEvent) {
	n.cancelled = append(n.cancelled, evt)
}

func newTestService(t *testing.T) (*Service, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	resolver := NewResolver(
		&stubDirectory{doctor: &doctors.Doctor{ID: "doc-1", FullName: "Dr. Ayan Warsame"}},
		storeBookedAdapter{store},
		defaultTemplate,
		nil, time.UTC, nil,
	).WithClock(fixedNow)
	svc := NewService(store, resolver, payments.NewSimulatedProcessor(10, nil), notifier, nil, 10, time.UTC, nil).
		WithClock(fixedNow)
	return svc, store, notifier
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
}

// storeBookedAdapter lets the memStore double as the resolver's booked
// slot source.
type storeBookedAdapter struct{ store *memStore }

func (a storeBookedAdapter) BookedSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	var slots []string
	for _, b := range a.store.bookings {
		if b.DoctorID == doctorID && b.AppointmentDate == date && b.Status != StatusCancelled {
			slots = append(slots, b.AppointmentTime)
		}
	}
	return slots, nil
}

var patient = identity.Principal{UserID: "pat-1", Email: "pat@example.com", Role: identity.RolePatient}

func paidDraft() *Draft {
	return &Draft{
		DoctorID:        "doc-1",
		AppointmentDate: "2026-09-01",
		AppointmentTime: "09:00",
		Reason:          "persistent headache",
		ContactPhone:    "0612345678",
		ContactEmail:    "pat@example.com",
		PaymentMethod:   payments.MethodEVC,
		PaymentNumber:   "0612345678",
		PaymentAmount:   10,
	}
}

func TestServiceCreate(t *testing.T) {
	svc, store, notifier := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, "pat-1", booking.PatientID)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, booking.ID, booking.PaymentRef, "simulated capture echoes the booking id")

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, "pat@example.com", notifier.created[0].PatientEmail)
}

func TestServiceCreateDefaultsAmountToFee(t *testing.T) {
	svc, _, _ := newTestService(t)

	draft := paidDraft()
	draft.PaymentAmount = 0

	booking, err := svc.Create(context.Background(), patient, draft)
	require.NoError(t, err)
	assert.Equal(t, 10, booking.PaymentAmount)
}

func TestServiceCreateValidationOrder(t *testing.T) {
	svc, _, _ := newTestService(t)

	draft := paidDraft()
	draft.Reason = "flu"
	draft.ContactPhone = "123"

	_, err := svc.Create(context.Background(), patient, draft)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 2)
	assert.Equal(t, "reason", vErr.Fields[0].Field)
	assert.Equal(t, "contactPhone", vErr.Fields[1].Field)
}

func TestServiceCreateRejectsPastDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	draft := paidDraft()
	draft.AppointmentDate = "2026-08-27"

	_, err := svc.Create(context.Background(), patient, draft)
	require.ErrorIs(t, err, ErrDateInPast)
}

func TestServiceCreateMalformedDateIsValidationError(t *testing.T) {
	svc, _, _ := newTestService(t)

	draft := paidDraft()
	draft.AppointmentDate = "01/09/2026"

	_, err := svc.Create(context.Background(), patient, draft)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr, "malformed date is the caller's mistake, not an internal failure")
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "appointmentDate", vErr.Fields[0].Field)
}

func TestServiceCreateTamperedAmountFailsCapture(t *testing.T) {
	svc, store, _ := newTestService(t)

	draft := paidDraft()
	draft.PaymentAmount = 1

	_, err := svc.Create(context.Background(), patient, draft)
	var capErr *payments.CaptureError
	require.ErrorAs(t, err, &capErr)
	assert.Empty(t, store.bookings, "failed capture must not leave a partial booking")
}

func TestServiceCreateSlotConflict(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	other := identity.Principal{UserID: "pat-2", Role: identity.RolePatient}
	draft := paidDraft()
	_, err = svc.Create(context.Background(), other, draft)
	// The second patient sees a validation error because availability no
	// longer offers 09:00; a conflicting insert that slipped past the
	// check would be ErrSlotTaken.
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		require.ErrorIs(t, err, ErrSlotTaken)
	}
}

func TestServiceCreateSlotRaceAtInsert(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.createErr = ErrSlotTaken

	_, err := svc.Create(context.Background(), patient, paidDraft())
	require.ErrorIs(t, err, ErrSlotTaken)
}

func TestServiceUpdateStatusConfirm(t *testing.T) {
	svc, _, notifier := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), booking.ID, StatusConfirmed, "bring previous scans")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, "bring previous scans", updated.Notes)

	require.Len(t, notifier.confirmed, 1)
	assert.Contains(t, notifier.confirmed[0].Notes, "bring previous scans")
}

func TestServiceUpdateStatusInvalidTransition(t *testing.T) {
	svc, _, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), booking.ID, StatusCompleted, "")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestServiceUpdateStatusTerminalIsIdempotent(t *testing.T) {
	svc, _, notifier := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), booking.ID, StatusCancelled, "")
	require.NoError(t, err)

	again, err := svc.UpdateStatus(context.Background(), booking.ID, StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Len(t, notifier.cancelled, 1, "no duplicate notification on re-apply")
}

func TestServiceUpdateStatusUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "bk-1", Status("archived"), "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestServiceCancelOwn(t *testing.T) {
	svc, _, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	cancelled, err := svc.CancelOwn(context.Background(), patient, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// The freed slot is bookable again.
	slots, err := svc.AvailableSlots(context.Background(), "doc-1", "2026-09-01")
	require.NoError(t, err)
	assert.Contains(t, slots, "09:00")
}

func TestServiceCancelOwnWrongOwner(t *testing.T) {
	svc, _, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	intruder := identity.Principal{UserID: "pat-2", Role: identity.RolePatient}
	_, err = svc.CancelOwn(context.Background(), intruder, booking.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestServiceCancelOwnConfirmedIsRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), booking.ID, StatusConfirmed, "")
	require.NoError(t, err)

	_, err = svc.CancelOwn(context.Background(), patient, booking.ID)
	require.ErrorIs(t, err, ErrNotCancellable)
}

func TestServiceUpdatePayment(t *testing.T) {
	svc, store, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	updated, err := svc.UpdatePayment(context.Background(), patient, booking.ID, payments.Details{
		Method: payments.MethodJeeb,
		Number: "0699999999",
		Amount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, payments.MethodJeeb, updated.PaymentMethod)
	assert.Equal(t, StatusPending, updated.Status, "payment correction never changes status")

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "0699999999", stored.PaymentNumber)
}

func TestServiceUpdatePaymentRejectsBadMethod(t *testing.T) {
	svc, _, _ := newTestService(t)

	booking, err := svc.Create(context.Background(), patient, paidDraft())
	require.NoError(t, err)

	_, err = svc.UpdatePayment(context.Background(), patient, booking.ID, payments.Details{
		Method: "paypal",
		Number: "0699999999",
		Amount: 10,
	})
	var capErr *payments.CaptureError
	require.ErrorAs(t, err, &capErr)
}
