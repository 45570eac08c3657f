package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type errorResponse struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the wire contract. Unrecognized
// errors become opaque 500s so internals never leak to patients.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: vErr.Error(), Fields: vErr.Fields})
		return
	}
	var capErr *payments.CaptureError
	if errors.As(err, &capErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: capErr.Reason})
		return
	}
	switch {
	case errors.Is(err, ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid date"})
	case errors.Is(err, ErrDateInPast):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "appointment date cannot be in the past"})
	case errors.Is(err, ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "that time slot was just taken, please pick another"})
	case errors.Is(err, ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "booking status cannot change that way"})
	case errors.Is(err, ErrNotCancellable):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "only pending bookings can be cancelled"})
	case errors.Is(err, ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "not your booking"})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "booking not found"})
	default:
		h.logger.Error("booking request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

// Availability handles GET /api/bookings/available-slots/{doctorID}/{date}
// requests. Query parameters are accepted as a fallback for older callers.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	date := chi.URLParam(r, "date")
	if doctorID == "" {
		doctorID = r.URL.Query().Get("doctorId")
	}
	if date == "" {
		date = r.URL.Query().Get("date")
	}
	if doctorID == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "doctorId and date are required"})
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid date"})
			return
		}
		// Backend trouble, not a caller mistake. The 5xx lets clients
		// classify it as a network failure rather than bad input.
		h.logger.Error("failed to resolve availability", "error", err, "doctor_id", doctorID, "date", date)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "could not load available slots"})
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doctorId":       doctorID,
		"date":           date,
		"availableSlots": slots,
	})
}

// Create handles POST /bookings requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Error("failed to decode booking draft", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	booking, err := h.service.Create(r.Context(), principal, &draft)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Message: "Booking created successfully",
		Booking: booking,
	})
}

// createResponse wraps a new booking. Clients key off the message to
// distinguish a created booking from an error payload.
type createResponse struct {
	Message string   `json:"message"`
	Booking *Booking `json:"booking"`
}

// MyBookings handles GET /bookings/my requests
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	bookings, err := h.service.UserBookings(r.Context(), principal)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Get handles GET /bookings/{id} requests. Patients can only read their
// own bookings; staff can read any.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	booking, err := h.service.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !principal.IsStaff() && booking.PatientID != principal.UserID {
		h.writeError(w, ErrNotOwner)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// Receipt handles GET /bookings/{id}/receipt requests, returning the
// plain-text receipt as a download.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	booking, err := h.service.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !principal.IsStaff() && booking.PatientID != principal.UserID {
		h.writeError(w, ErrNotOwner)
		return
	}

	receipt := payments.Receipt{
		Ref:    booking.ReceiptRef(),
		Amount: booking.PaymentAmount,
		Method: booking.PaymentMethod,
		Number: booking.PaymentNumber,
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(receipt.Render()))
}

// Cancel handles POST /bookings/{id}/cancel requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	booking, err := h.service.CancelOwn(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	DoctorNotes string `json:"doctorNotes"`
	// Notes is the older field name, still accepted when doctorNotes
	// is absent.
	Notes string `json:"notes"`
}

func (req updateStatusRequest) notes() string {
	if req.DoctorNotes != "" {
		return req.DoctorNotes
	}
	return req.Notes
}

// UpdateStatus handles PATCH /admin/bookings/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status), req.notes())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

type updatePaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	PaymentNumber string `json:"paymentNumber"`
	PaymentAmount int    `json:"paymentAmount"`
}

// UpdatePayment handles PATCH /bookings/{id}/payment requests
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return
	}

	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	booking, err := h.service.UpdatePayment(r.Context(), principal, chi.URLParam(r, "id"), payments.Details{
		Method: payments.Method(req.PaymentMethod),
		Number: req.PaymentNumber,
		Amount: req.PaymentAmount,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// ListAll handles GET /admin/bookings requests
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.AllBookings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ListByDoctor handles GET /admin/doctors/{doctorID}/bookings requests
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	if doctorID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing doctor id"})
		return
	}

	bookings, err := h.service.DoctorBookings(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doctorId": doctorID,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Delete handles DELETE /admin/bookings/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
