package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daryeelcare/caafimaad-platform/internal/payments"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// next. Re-applying a terminal status is handled by the service as a no-op
// and is not a transition.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// DoctorSummary is the slice of the doctor record embedded in booking
// projections. Bookings reference doctors weakly: when the doctor record
// has been deleted the summary is absent and consumers fall back to the id.
type DoctorSummary struct {
	ID        string `json:"_id"`
	FullName  string `json:"fullName"`
	Specialty string `json:"specialty,omitempty"`
	Workplace string `json:"workplace,omitempty"`
}

// DoctorRef is the booking's doctor field as it travels on the wire.
// Depending on the projection it is either a bare doctor id or a
// populated summary object; DoctorRef accepts both and consumers unwrap
// through Label or Populated instead of inspecting the raw shape.
type DoctorRef struct {
	id      string
	summary *DoctorSummary
}

// RefByID builds a bare reference carrying only the doctor id.
func RefByID(id string) *DoctorRef {
	return &DoctorRef{id: id}
}

// RefPopulated builds a populated reference.
func RefPopulated(s *DoctorSummary) *DoctorRef {
	if s == nil {
		return nil
	}
	return &DoctorRef{id: s.ID, summary: s}
}

// ID returns the doctor id regardless of which shape arrived.
func (r *DoctorRef) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Populated returns the embedded summary, or nil for a bare reference.
func (r *DoctorRef) Populated() *DoctorSummary {
	if r == nil {
		return nil
	}
	return r.summary
}

// Label is the single rendering helper: the doctor's name when the
// reference is populated, otherwise the id.
func (r *DoctorRef) Label() string {
	if r == nil {
		return ""
	}
	if r.summary != nil && r.summary.FullName != "" {
		return r.summary.FullName
	}
	return r.id
}

func (r *DoctorRef) MarshalJSON() ([]byte, error) {
	if r.summary != nil {
		return json.Marshal(r.summary)
	}
	return json.Marshal(r.id)
}

func (r *DoctorRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &r.id)
	}
	var s DoctorSummary
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("bookings: doctor field is neither id nor object: %w", err)
	}
	r.id = s.ID
	r.summary = &s
	return nil
}

// Booking is the central entity of the appointment workflow.
type Booking struct {
	ID              string          `json:"_id"`
	PatientID       string          `json:"patientId"`
	DoctorID        string          `json:"doctorId"`
	Doctor          *DoctorRef      `json:"doctor,omitempty"`
	AppointmentDate string          `json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string          `json:"appointmentTime"` // slot label, e.g. "09:00"
	Reason          string          `json:"reason"`
	Symptoms        string          `json:"symptoms,omitempty"`
	Notes           string          `json:"notes,omitempty"` // authored by the doctor after review
	IsEmergency     bool            `json:"isEmergency"`
	ContactPhone    string          `json:"contactPhone"`
	ContactEmail    string          `json:"contactEmail,omitempty"`
	Status          Status          `json:"status"`
	PaymentMethod   payments.Method `json:"paymentMethod"`
	PaymentNumber   string          `json:"paymentNumber"`
	PaymentAmount   int             `json:"paymentAmount"`
	PaymentRef      string          `json:"paymentRef,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ReceiptRef is the reference printed on the receipt. Older bookings
// recorded before payment references existed fall back to their own id.
func (b *Booking) ReceiptRef() string {
	if b.PaymentRef != "" {
		return b.PaymentRef
	}
	return b.ID
}

// Draft is a booking submission before validation. Optional fields are
// trimmed and dropped when empty so the backend can distinguish "not
// provided" from "provided empty".
type Draft struct {
	DoctorID        string          `json:"doctorId"`
	AppointmentDate string          `json:"appointmentDate"`
	AppointmentTime string          `json:"appointmentTime"`
	Reason          string          `json:"reason"`
	Symptoms        string          `json:"symptoms,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	IsEmergency     bool            `json:"isEmergency"`
	ContactPhone    string          `json:"contactPhone"`
	ContactEmail    string          `json:"contactEmail,omitempty"`
	PaymentMethod   payments.Method `json:"paymentMethod"`
	PaymentNumber   string          `json:"paymentNumber"`
	PaymentAmount   int             `json:"paymentAmount"`
}

const (
	// DateLayout is the wire format of appointment dates.
	DateLayout = "2006-01-02"
	// SlotLayout is the wire format of slot labels.
	SlotLayout = "15:04"
)
