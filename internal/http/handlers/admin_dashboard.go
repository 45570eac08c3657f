package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// AdminDashboardHandler serves the staff dashboard overview. It runs
// read-only aggregate queries against the reporting connection, which
// is a plain database/sql handle kept separate from the pgx pool the
// request-path repositories use.
type AdminDashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminDashboardHandler creates a new admin dashboard handler.
func NewAdminDashboardHandler(db *sql.DB, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{
		db:     db,
		logger: logger,
	}
}

// DashboardOverviewResponse contains the main dashboard metrics.
type DashboardOverviewResponse struct {
	Period         string          `json:"period"`
	Bookings       BookingStats    `json:"bookings"`
	Payments       PaymentStats    `json:"payments"`
	Doctors        DoctorStats     `json:"doctors"`
	Patients       PatientStats    `json:"patients"`
	Contacts       ContactStats    `json:"contacts"`
	PendingActions []PendingAction `json:"pending_actions"`
}

// BookingStats contains booking-related dashboard metrics.
type BookingStats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Upcoming       int `json:"upcoming"`
	ThisWeek       int `json:"this_week"`
	CancelledCount int `json:"cancelled_count"`
}

// PaymentStats contains payment-related dashboard metrics.
type PaymentStats struct {
	TotalCollected int `json:"total_collected"`
	ThisWeek       int `json:"this_week"`
	ByMethod       []struct {
		Method string `json:"method"`
		Count  int    `json:"count"`
	} `json:"by_method,omitempty"`
}

// DoctorStats contains doctor roster metrics.
type DoctorStats struct {
	Total int `json:"total"`
}

// PatientStats contains registered user metrics.
type PatientStats struct {
	Total       int `json:"total"`
	NewThisWeek int `json:"new_this_week"`
}

// ContactStats contains contact inbox metrics.
type ContactStats struct {
	Total    int `json:"total"`
	ThisWeek int `json:"this_week"`
}

// PendingAction represents an item requiring staff attention.
type PendingAction struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Link        string `json:"link,omitempty"`
}

// GetDashboardOverview returns the main dashboard overview.
// GET /admin/dashboard
func (h *AdminDashboardHandler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	dashboard := DashboardOverviewResponse{
		Period: period,
	}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	today := now.Format("2006-01-02")

	// Booking metrics. Scan errors on individual aggregates degrade the
	// affected number to zero instead of failing the whole dashboard.
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings`,
	).Scan(&dashboard.Bookings.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE status = 'pending'`,
	).Scan(&dashboard.Bookings.Pending)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings
		 WHERE status IN ('pending', 'confirmed') AND appointment_date >= $1`, today,
	).Scan(&dashboard.Bookings.Upcoming)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE created_at >= $1`, weekAgo,
	).Scan(&dashboard.Bookings.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM bookings WHERE status = 'cancelled'`,
	).Scan(&dashboard.Bookings.CancelledCount)

	// Payment metrics. Cancelled bookings are excluded from revenue.
	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(payment_amount), 0) FROM bookings WHERE status <> 'cancelled'`,
	).Scan(&dashboard.Payments.TotalCollected)

	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(payment_amount), 0) FROM bookings
		 WHERE status <> 'cancelled' AND created_at >= $1`, weekAgo,
	).Scan(&dashboard.Payments.ThisWeek)

	if rows, err := h.db.QueryContext(r.Context(),
		`SELECT payment_method, COUNT(*) FROM bookings
		 WHERE payment_method <> '' GROUP BY payment_method ORDER BY COUNT(*) DESC`,
	); err == nil {
		defer rows.Close()
		for rows.Next() {
			var entry struct {
				Method string `json:"method"`
				Count  int    `json:"count"`
			}
			if err := rows.Scan(&entry.Method, &entry.Count); err == nil {
				dashboard.Payments.ByMethod = append(dashboard.Payments.ByMethod, entry)
			}
		}
	}

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM doctors`,
	).Scan(&dashboard.Doctors.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM users WHERE role = 'patient'`,
	).Scan(&dashboard.Patients.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM users WHERE role = 'patient' AND created_at >= $1`, weekAgo,
	).Scan(&dashboard.Patients.NewThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM contact_messages`,
	).Scan(&dashboard.Contacts.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM contact_messages WHERE created_at >= $1`, weekAgo,
	).Scan(&dashboard.Contacts.ThisWeek)

	dashboard.PendingActions = h.buildPendingActions(dashboard)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dashboard); err != nil {
		h.logger.Error("failed to encode dashboard response", "error", err)
	}
}

func (h *AdminDashboardHandler) buildPendingActions(d DashboardOverviewResponse) []PendingAction {
	actions := []PendingAction{}

	if d.Bookings.Pending > 0 {
		actions = append(actions, PendingAction{
			Type:        "pending_bookings",
			Priority:    "high",
			Description: "Bookings awaiting confirmation",
			Count:       d.Bookings.Pending,
			Link:        "/admin/bookings?status=pending",
		})
	}

	if d.Contacts.ThisWeek > 0 {
		actions = append(actions, PendingAction{
			Type:        "contact_messages",
			Priority:    "medium",
			Description: "New contact messages this week",
			Count:       d.Contacts.ThisWeek,
			Link:        "/admin/contacts",
		})
	}

	return actions
}

// BookingTrendPoint is one day of the booking trend series.
type BookingTrendPoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Revenue  int    `json:"revenue"`
	Cancells int    `json:"cancellations"`
}

// BookingTrendResponse contains the per-day booking trend.
type BookingTrendResponse struct {
	Days  int                 `json:"days"`
	Trend []BookingTrendPoint `json:"trend"`
}

// GetBookingTrend returns the booking counts per day for the last N days.
// GET /admin/dashboard/trend?days=30
func (h *AdminDashboardHandler) GetBookingTrend(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)

	rows, err := h.db.QueryContext(r.Context(),
		`SELECT DATE(created_at)::text AS day,
		        COUNT(*),
		        COALESCE(SUM(payment_amount) FILTER (WHERE status <> 'cancelled'), 0),
		        COUNT(*) FILTER (WHERE status = 'cancelled')
		 FROM bookings
		 WHERE created_at >= $1
		 GROUP BY DATE(created_at)
		 ORDER BY day ASC`, since)
	if err != nil {
		h.logger.Error("failed to query booking trend", "error", err)
		http.Error(w, "failed to load booking trend", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	resp := BookingTrendResponse{Days: days, Trend: []BookingTrendPoint{}}
	for rows.Next() {
		var point BookingTrendPoint
		if err := rows.Scan(&point.Date, &point.Created, &point.Revenue, &point.Cancells); err != nil {
			h.logger.Error("failed to scan trend row", "error", err)
			http.Error(w, "failed to load booking trend", http.StatusInternalServerError)
			return
		}
		resp.Trend = append(resp.Trend, point)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("trend rows iteration failed", "error", err)
		http.Error(w, "failed to load booking trend", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode trend response", "error", err)
	}
}
