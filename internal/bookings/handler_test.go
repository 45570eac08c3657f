package bookings

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryeelcare/caafimaad-platform/internal/doctors"
	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Get("/api/bookings/available-slots/{doctorID}/{date}", h.Availability)
	r.Post("/api/bookings", h.Create)
	r.Get("/api/bookings/user", h.MyBookings)
	r.Get("/api/bookings/admin/all", h.ListAll)
	r.Get("/api/bookings/admin/doctor/{doctorID}", h.ListByDoctor)
	r.Delete("/api/bookings/admin/{id}", h.Delete)
	r.Get("/api/bookings/{id}", h.Get)
	r.Get("/api/bookings/{id}/receipt", h.Receipt)
	r.Put("/api/bookings/{id}/cancel", h.Cancel)
	r.Put("/api/bookings/{id}/status", h.UpdateStatus)
	r.Put("/api/bookings/{id}/payment-status", h.UpdatePayment)
	return r, svc
}

func asPrincipal(req *http.Request, p identity.Principal) *http.Request {
	return req.WithContext(identity.WithPrincipal(req.Context(), p))
}

func TestHandlerAvailability(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/available-slots/doc-1/2026-09-01", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DoctorID string   `json:"doctorId"`
		Date     string   `json:"date"`
		Slots    []string `json:"availableSlots"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "doc-1", resp.DoctorID)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, resp.Slots)
}

func TestHandlerAvailabilityInvalidDate(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/available-slots/doc-1/not-a-date", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerAvailabilityBackendFailure(t *testing.T) {
	// A booked-slot lookup failure is the backend's fault and must not
	// come back as a 4xx blaming the caller's date.
	resolver := NewResolver(
		&stubDirectory{doctor: &doctors.Doctor{ID: "doc-1"}},
		&stubBooked{err: errors.New("connection reset")},
		defaultTemplate,
		nil, time.UTC, nil,
	).WithClock(fixedNow)
	svc := NewService(newMemStore(), resolver, payments.NewSimulatedProcessor(10, nil), &recordingNotifier{}, nil, 10, time.UTC, nil).
		WithClock(fixedNow)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Get("/api/bookings/available-slots/{doctorID}/{date}", h.Availability)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/available-slots/doc-1/2026-09-01", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "could not load available slots", resp.Message)
}

func createViaHandler(t *testing.T, r *chi.Mux) *Booking {
	t.Helper()
	body, _ := json.Marshal(paidDraft())
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body)), patient)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Message string   `json:"message"`
		Booking *Booking `json:"booking"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "Booking created successfully", resp.Message)
	require.NotNil(t, resp.Booking)
	return resp.Booking
}

func TestHandlerCreate(t *testing.T) {
	r, _ := newTestRouter(t)

	booking := createViaHandler(t, r)
	assert.Equal(t, StatusPending, booking.Status)
	assert.NotEmpty(t, booking.ID)
}

func TestHandlerCreateRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(paidDraft())
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerCreateValidationErrorShape(t *testing.T) {
	r, _ := newTestRouter(t)

	draft := paidDraft()
	draft.Reason = "flu"
	body, _ := json.Marshal(draft)
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body)), patient)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string       `json:"message"`
		Fields  []FieldError `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "reason", resp.Fields[0].Field)
	assert.Equal(t, resp.Fields[0].Message, resp.Message, "top-level message mirrors the first field error")
}

func TestHandlerGetEnforcesOwnership(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	intruder := identity.Principal{UserID: "pat-2", Role: identity.RolePatient}
	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/bookings/"+booking.ID, nil), intruder)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := identity.Principal{UserID: "adm-1", Role: identity.RoleAdmin}
	req = asPrincipal(httptest.NewRequest(http.MethodGet, "/api/bookings/"+booking.ID, nil), admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerReceipt(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/bookings/"+booking.ID+"/receipt", nil), patient)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-"+booking.PaymentRef+".txt")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Payment Receipt"), body)
	assert.Contains(t, body, "Amount: $10")
	assert.Contains(t, body, "Method: evc")
}

func TestHandlerCancel(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	req := asPrincipal(httptest.NewRequest(http.MethodPut, "/api/bookings/"+booking.ID+"/cancel", nil), patient)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var cancelled Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cancelled))
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestHandlerUpdateStatusInvalidTransition(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	body := []byte(`{"status":"completed"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/bookings/"+booking.ID+"/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandlerUpdateStatusConfirm(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	body := []byte(`{"status":"confirmed","doctorNotes":"bring previous scans"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/bookings/"+booking.ID+"/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var updated Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, "bring previous scans", updated.Notes)
}

func TestHandlerUpdateStatusLegacyNotesField(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	body := []byte(`{"status":"confirmed","notes":"fast before the visit"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/bookings/"+booking.ID+"/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var updated Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "fast before the visit", updated.Notes)
}

func TestHandlerAdminListings(t *testing.T) {
	r, _ := newTestRouter(t)
	createViaHandler(t, r)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/admin/all", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings/admin/doctor/doc-1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerDelete(t *testing.T) {
	r, _ := newTestRouter(t)
	booking := createViaHandler(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/admin/"+booking.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = asPrincipal(httptest.NewRequest(http.MethodGet, "/api/bookings/"+booking.ID, nil), patient)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
