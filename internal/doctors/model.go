package doctors

import (
	"errors"
	"time"
)

// ErrNotFound indicates the doctor record does not exist.
var ErrNotFound = errors.New("doctors: doctor not found")

// Schedule is a doctor's working-hours template. Slots are generated from
// it at fixed granularity; a zero value falls back to the clinic default.
type Schedule struct {
	OpensAt     string `json:"opensAt"`  // "HH:MM"
	ClosesAt    string `json:"closesAt"` // "HH:MM"
	SlotMinutes int    `json:"slotMinutes"`
}

// IsZero reports whether the doctor has no per-doctor override.
func (s Schedule) IsZero() bool {
	return s.OpensAt == "" && s.ClosesAt == "" && s.SlotMinutes == 0
}

// Doctor is a directory entry patients book against.
type Doctor struct {
	ID             string    `json:"_id"`
	FullName       string    `json:"fullName"`
	Specialty      string    `json:"specialty"`
	Workplace      string    `json:"workplace,omitempty"`
	EducationLevel string    `json:"educationLevel,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	IsVerified     bool      `json:"isVerified"`
	ImageKey       string    `json:"imageKey,omitempty"`
	Schedule       Schedule  `json:"schedule"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateDoctorRequest is the admin payload for creating or updating a
// directory entry.
type CreateDoctorRequest struct {
	FullName       string   `json:"fullName"`
	Specialty      string   `json:"specialty"`
	Workplace      string   `json:"workplace"`
	EducationLevel string   `json:"educationLevel"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	IsVerified     bool     `json:"isVerified"`
	Schedule       Schedule `json:"schedule"`
}

// Validate checks required directory fields.
func (r *CreateDoctorRequest) Validate() error {
	if r.FullName == "" {
		return errors.New("doctors: full name is required")
	}
	if r.Specialty == "" {
		return errors.New("doctors: specialty is required")
	}
	return nil
}
