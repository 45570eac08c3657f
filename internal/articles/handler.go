package articles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles HTTP requests for the article library
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new articles handler
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// List handles GET /articles requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.repo.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("failed to list articles", "error", err)
		http.Error(w, "failed to list articles", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"count":    len(articles),
	})
}

// Get handles GET /articles/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load article", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// Create handles POST /admin/articles requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	article, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("article published", "id", article.ID, "title", article.Title)
	writeJSON(w, http.StatusCreated, article)
}

// Update handles PUT /admin/articles/{id} requests
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	article, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /admin/articles/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete article", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
