package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles admin HTTP requests for account management
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// List handles GET /admin/users requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"users": users,
		"count": len(users),
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PATCH /admin/users/{id}/role requests
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.repo.UpdateRole(r.Context(), id, identity.Role(req.Role)); err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			http.Error(w, "invalid role", http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update role", "error", err, "user_id", id)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("user role updated", "user_id", id, "role", req.Role)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /admin/users/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
