package client

import (
	"context"
	"sync"

	"github.com/daryeelcare/caafimaad-platform/internal/bookings"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
)

// ErrSubmitInFlight reports a submit attempt while a previous one is
// still running.
var ErrSubmitInFlight = errSubmitInFlight{}

type errSubmitInFlight struct{}

func (errSubmitInFlight) Error() string { return "client: a booking submission is already in flight" }

// Submitter guards CreateBooking against double submission and tracks
// the payment state of the current attempt. A second Submit while one is
// outstanding is rejected locally without reaching the network, so a
// slow confirmation can never produce two bookings. State lets callers
// render progress: Pending when the attempt starts, Processing while the
// request is on the wire, then Success with the payment reference or
// Failed with the reason.
type Submitter struct {
	client *Client

	mu    sync.Mutex
	busy  bool
	state payments.State
}

// NewSubmitter wraps the client with double-submit protection.
func NewSubmitter(c *Client) *Submitter {
	return &Submitter{client: c, state: payments.Idle{}}
}

// Submit sends the draft unless another submission is outstanding.
func (s *Submitter) Submit(ctx context.Context, draft *bookings.Draft) (*bookings.Booking, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.busy = true
	// A fresh attempt wipes any banner left over from the last one.
	s.state = payments.Pending{}
	s.mu.Unlock()

	s.setState(payments.Processing{})
	booking, err := s.client.CreateBooking(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.state = payments.Failed{Reason: err.Error()}
		return nil, err
	}
	s.state = payments.Success{Ref: booking.ReceiptRef()}
	return booking, nil
}

// Busy reports whether a submission is currently outstanding.
func (s *Submitter) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// State returns the payment state of the latest submission attempt.
func (s *Submitter) State() payments.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset clears a finished attempt back to Idle so a dismissed banner
// stays dismissed. It does nothing while a submission is in flight.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return
	}
	s.state = payments.Idle{}
}

func (s *Submitter) setState(st payments.State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
