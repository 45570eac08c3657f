package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daryeelcare/caafimaad-platform/internal/doctors"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Template is a working-hours template slots are generated from.
type Template struct {
	OpensAt     string
	ClosesAt    string
	SlotMinutes int
}

// Slots expands the template into chronological slot labels. Slot starts
// strictly before closing time are included.
func (t Template) Slots() []string {
	open, err := time.Parse(SlotLayout, t.OpensAt)
	if err != nil {
		return nil
	}
	close, err := time.Parse(SlotLayout, t.ClosesAt)
	if err != nil || !close.After(open) || t.SlotMinutes <= 0 {
		return nil
	}
	var out []string
	for cur := open; cur.Before(close); cur = cur.Add(time.Duration(t.SlotMinutes) * time.Minute) {
		out = append(out, cur.Format(SlotLayout))
	}
	return out
}

// DoctorDirectory is the slice of the doctors repository the resolver
// needs.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id string) (*doctors.Doctor, error)
}

// BookedSlotSource reports slot labels held by non-cancelled bookings.
type BookedSlotSource interface {
	BookedSlots(ctx context.Context, doctorID, date string) ([]string, error)
}

// Resolver computes the bookable time slots for a doctor and date.
type Resolver struct {
	directory DoctorDirectory
	booked    BookedSlotSource
	template  Template
	cache     *SlotCache
	location  *time.Location
	now       func() time.Time
	logger    *logging.Logger
}

// NewResolver constructs a resolver. cache may be nil.
func NewResolver(directory DoctorDirectory, booked BookedSlotSource, template Template, cache *SlotCache, location *time.Location, logger *logging.Logger) *Resolver {
	if directory == nil || booked == nil {
		panic("bookings: resolver requires directory and booked slot source")
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		directory: directory,
		booked:    booked,
		template:  template,
		cache:     cache,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the resolver's clock. Tests use this to pin "today".
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// AvailableSlots returns the chronological open slots for the doctor on
// the given date. An unknown doctor yields an empty result, not an error;
// a storage failure is a real error so callers can distinguish "no open
// slots" from "could not compute availability".
func (r *Resolver) AvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	day, err := time.ParseInLocation(DateLayout, date, r.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	if r.cache != nil {
		if slots, ok := r.cache.Get(ctx, doctorID, date); ok {
			return slots, nil
		}
	}

	doc, err := r.directory.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("bookings: resolve doctor: %w", err)
	}

	template := r.template
	if !doc.Schedule.IsZero() {
		template = Template{
			OpensAt:     doc.Schedule.OpensAt,
			ClosesAt:    doc.Schedule.ClosesAt,
			SlotMinutes: doc.Schedule.SlotMinutes,
		}
	}

	taken, err := r.booked.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("bookings: load booked slots: %w", err)
	}
	takenSet := make(map[string]struct{}, len(taken))
	for _, slot := range taken {
		takenSet[slot] = struct{}{}
	}

	now := r.now().In(r.location)
	isToday := day.Year() == now.Year() && day.YearDay() == now.YearDay()
	cutoff := now.Format(SlotLayout)

	slots := []string{}
	for _, slot := range template.Slots() {
		if _, ok := takenSet[slot]; ok {
			continue
		}
		// Slot labels are zero-padded HH:MM, so string order is time order.
		if isToday && slot < cutoff {
			continue
		}
		slots = append(slots, slot)
	}

	if r.cache != nil {
		r.cache.Set(ctx, doctorID, date, slots)
	}
	return slots, nil
}

// Invalidate drops any cached slots for the doctor and date. Called after
// every write that can change availability.
func (r *Resolver) Invalidate(ctx context.Context, doctorID, date string) {
	if r.cache != nil {
		r.cache.Delete(ctx, doctorID, date)
	}
}
