package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Handler handles HTTP requests for the health assistant
type Handler struct {
	publisher *Publisher
	jobs      JobRecorder
	logger    *logging.Logger
}

// NewHandler creates a new chat handler
func NewHandler(publisher *Publisher, jobs JobRecorder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		publisher: publisher,
		jobs:      jobs,
		logger:    logger,
	}
}

type jobAcceptedResponse struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// Start handles POST /chat/start requests
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.publisher.PublishStart(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to queue chat start", "error", err)
		http.Error(w, "assistant is unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobAcceptedResponse{JobID: jobID, Status: JobStatusPending})
}

// Message handles POST /chat/message requests
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.publisher.PublishMessage(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to queue chat message", "error", err)
		http.Error(w, "assistant is unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobAcceptedResponse{JobID: jobID, Status: JobStatusPending})
}

// Job handles GET /chat/jobs/{id} requests
func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load chat job", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
