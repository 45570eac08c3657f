package doctors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/internal/storage"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

const maxImageBytes = 5 << 20

// Handler handles HTTP requests for the doctor directory
type Handler struct {
	repo   *Repository
	images storage.BlobStore
	logger *logging.Logger
}

// NewHandler creates a new doctors handler. images may be nil when no
// image storage is configured.
func NewHandler(repo *Repository, images storage.BlobStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

// List handles GET /doctors requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// Get handles GET /doctors/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("failed to load doctor", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, doctor)
}

// Create handles POST /admin/doctors requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	doctor, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create doctor", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("doctor created", "id", doctor.ID, "name", doctor.FullName)
	respondJSON(w, http.StatusCreated, doctor)
}

// Update handles PUT /admin/doctors/{id} requests
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	doctor, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("failed to update doctor", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, doctor)
}

// Delete handles DELETE /admin/doctors/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("failed to delete doctor", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles PUT /admin/doctors/{id}/image requests. The raw
// image body is stored under a per-doctor key.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		respondMessage(w, http.StatusNotImplemented, "image storage is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "doctor not found")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		respondMessage(w, http.StatusUnsupportedMediaType, "only JPEG and PNG images are accepted")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "could not read image body")
		return
	}
	if len(data) == 0 {
		respondMessage(w, http.StatusBadRequest, "empty image body")
		return
	}
	if len(data) > maxImageBytes {
		respondMessage(w, http.StatusRequestEntityTooLarge, "image exceeds 5MB")
		return
	}

	key := "doctors/" + id
	if err := h.images.Put(r.Context(), key, contentType, data); err != nil {
		h.logger.Error("failed to store doctor image", "error", err, "doctor_id", id)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.repo.SetImageKey(r.Context(), id, key); err != nil {
		h.logger.Error("failed to record image key", "error", err, "doctor_id", id)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"imageKey": key})
}

// Image handles GET /doctors/{id}/image requests
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		respondMessage(w, http.StatusNotFound, "no image")
		return
	}

	blob, err := h.images.Get(r.Context(), "doctors/"+chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "no image")
			return
		}
		h.logger.Error("failed to load doctor image", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(blob.Data)
}
