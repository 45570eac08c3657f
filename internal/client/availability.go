package client

import (
	"context"
	"sync"
)

// AvailabilityView tracks the latest availability request for a booking
// form. Doctor and date pickers fire overlapping fetches; only the most
// recent selection may populate the slot list, regardless of response
// order.
type AvailabilityView struct {
	client *Client

	mu  sync.Mutex
	seq uint64
}

// NewAvailabilityView wraps the client with stale-response tracking.
func NewAvailabilityView(c *Client) *AvailabilityView {
	return &AvailabilityView{client: c}
}

// ErrStale reports that a newer selection superseded this fetch while it
// was in flight. The result carries no slots and must be discarded.
var ErrStale = errStale{}

type errStale struct{}

func (errStale) Error() string { return "client: availability response superseded" }

// Fetch loads the slots for the given doctor and date. If the view issued
// a newer Fetch before this one returned, the response is discarded and
// ErrStale is returned instead.
func (v *AvailabilityView) Fetch(ctx context.Context, doctorID, date string) ([]string, error) {
	v.mu.Lock()
	v.seq++
	mine := v.seq
	v.mu.Unlock()

	slots, err := v.client.Availability(ctx, doctorID, date)

	v.mu.Lock()
	latest := v.seq
	v.mu.Unlock()
	if mine != latest {
		return nil, ErrStale
	}
	return slots, err
}

// Reset invalidates any fetch still in flight, e.g. when the form clears
// its doctor or date selection.
func (v *AvailabilityView) Reset() {
	v.mu.Lock()
	v.seq++
	v.mu.Unlock()
}
