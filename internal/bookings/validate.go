package bookings

import (
	"slices"
	"strings"
)

// FieldError describes a single rejected draft field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

const (
	minReasonLen = 5
	minPhoneLen  = 7
)

// ValidateDraft checks a submission against the rules in the order the
// booking form applies them, so the first error is always the one shown.
// knownSlots must be the latest availability result for the draft's doctor
// and date; the chosen time is re-validated against it rather than trusted
// from stale state. The draft's optional fields are normalized in place:
// trimmed, and dropped entirely when empty.
func ValidateDraft(draft *Draft, knownSlots []string) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(draft.DoctorID) == "" {
		errs = append(errs, FieldError{Field: "doctorId", Message: "doctor is required"})
	}
	if strings.TrimSpace(draft.AppointmentDate) == "" {
		errs = append(errs, FieldError{Field: "appointmentDate", Message: "please select a date"})
	}
	if strings.TrimSpace(draft.AppointmentTime) == "" {
		errs = append(errs, FieldError{Field: "appointmentTime", Message: "please select a time"})
	} else if !slices.Contains(knownSlots, draft.AppointmentTime) {
		errs = append(errs, FieldError{Field: "appointmentTime", Message: "selected time is no longer available"})
	}
	if len(strings.TrimSpace(draft.Reason)) < minReasonLen {
		errs = append(errs, FieldError{Field: "reason", Message: "please provide a reason of at least 5 characters"})
	}
	if len(strings.TrimSpace(draft.ContactPhone)) < minPhoneLen {
		errs = append(errs, FieldError{Field: "contactPhone", Message: "please provide a valid phone number"})
	}

	draft.Reason = strings.TrimSpace(draft.Reason)
	draft.ContactPhone = strings.TrimSpace(draft.ContactPhone)
	draft.Symptoms = strings.TrimSpace(draft.Symptoms)
	draft.Notes = strings.TrimSpace(draft.Notes)
	draft.ContactEmail = strings.TrimSpace(draft.ContactEmail)

	return errs
}
