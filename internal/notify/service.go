package notify

import (
	"context"
	"fmt"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// BookingEvent carries the booking fields the notification templates need.
// The bookings package fills it so notify stays free of a dependency on
// the booking model.
type BookingEvent struct {
	BookingID       string
	PatientEmail    string
	DoctorLabel     string
	AppointmentDate string
	AppointmentTime string
	Notes           string
}

// Service sends patient-facing emails on booking lifecycle transitions.
// All sends are best effort: a notification failure never fails the
// transition that triggered it.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	return &Service{email: email, logger: logger}
}

// BookingCreated confirms receipt of a new booking.
func (s *Service) BookingCreated(ctx context.Context, evt BookingEvent) {
	s.send(ctx, evt, "Your appointment request was received",
		fmt.Sprintf("Your appointment with %s on %s at %s has been received and is pending review.",
			evt.DoctorLabel, evt.AppointmentDate, evt.AppointmentTime))
}

// BookingConfirmed notifies the patient of a confirmed appointment.
func (s *Service) BookingConfirmed(ctx context.Context, evt BookingEvent) {
	body := fmt.Sprintf("Your appointment with %s on %s at %s is confirmed.",
		evt.DoctorLabel, evt.AppointmentDate, evt.AppointmentTime)
	if evt.Notes != "" {
		body += "\n\nNote from the doctor: " + evt.Notes
	}
	s.send(ctx, evt, "Your appointment is confirmed", body)
}

// BookingCancelled notifies the patient of a cancellation.
func (s *Service) BookingCancelled(ctx context.Context, evt BookingEvent) {
	s.send(ctx, evt, "Your appointment was cancelled",
		fmt.Sprintf("Your appointment with %s on %s at %s has been cancelled.",
			evt.DoctorLabel, evt.AppointmentDate, evt.AppointmentTime))
}

func (s *Service) send(ctx context.Context, evt BookingEvent, subject, body string) {
	if evt.PatientEmail == "" {
		return
	}
	msg := EmailMessage{
		To:      evt.PatientEmail,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("booking notification failed", "booking_id", evt.BookingID, "error", err)
	}
}
