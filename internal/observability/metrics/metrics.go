package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking workflow.
type BookingMetrics struct {
	createdTotal        *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	slotConflictTotal   prometheus.Counter
	availabilityLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caafimaad",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Booking creation attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caafimaad",
			Subsystem: "bookings",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions by from/to status",
		}, []string{"from", "to"}),
		slotConflictTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "caafimaad",
			Subsystem: "bookings",
			Name:      "slot_conflict_total",
			Help:      "Submissions rejected because the slot was already taken",
		}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "caafimaad",
			Subsystem: "bookings",
			Name:      "availability_seconds",
			Help:      "Latency of availability resolution",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.transitionsTotal, m.slotConflictTotal, m.availabilityLatency)
	return m
}

func (m *BookingMetrics) ObserveCreated(outcome string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflictTotal.Inc()
}

func (m *BookingMetrics) ObserveAvailabilityLatency(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}
