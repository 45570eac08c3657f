package messages

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles HTTP requests for direct messaging
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new messages handler
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Send handles POST /messages requests
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.repo.Send(r.Context(), principal.UserID, &req)
	if err != nil {
		if errors.Is(err, ErrEmptyBody) || errors.Is(err, ErrSelfMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to send message", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// Conversation handles GET /messages/{partnerID} requests
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	partnerID := chi.URLParam(r, "partnerID")
	msgs, err := h.repo.Conversation(r.Context(), principal.UserID, partnerID)
	if err != nil {
		h.logger.Error("failed to load conversation", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"partnerId": partnerID,
		"messages":  msgs,
		"count":     len(msgs),
	})
}

// Inbox handles GET /messages requests
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	threads, err := h.repo.Inbox(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("failed to load inbox", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"threads": threads,
		"count":   len(threads),
	})
}
