package contacts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles HTTP requests for contact messages
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new contacts handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /contacts requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode contact request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("contact message received", "id", msg.ID, "name", msg.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// ListResponse is the response for listing contact messages
type ListResponse struct {
	Messages []*ContactMessage `json:"messages"`
	Count    int               `json:"count"`
}

// List handles GET /admin/contacts requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list contact messages", "error", err)
		http.Error(w, "failed to list contact messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Messages: messages, Count: len(messages)})
}

// Delete handles DELETE /admin/contacts/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "contact message not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete contact message", "error", err)
		http.Error(w, "failed to delete contact message", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
