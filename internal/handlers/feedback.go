package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

// FeedbackHandler handles feedback-related requests
type FeedbackHandler struct {
	store  store.Store
	logger *log.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(st store.Store, logger *log.Logger) *FeedbackHandler {
	return &FeedbackHandler{store: st, logger: logger}
}

// ListByVideo handles GET /api/videos/{id}/feedback
func (h *FeedbackHandler) ListByVideo(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.store.ListFeedbackByVideo(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Printf("Failed to list feedback: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	respondJSON(w, http.StatusOK, feedback)
}

// Create handles POST /api/videos/{id}/feedback. The video id always
// comes from the path; any videoId in the body is ignored.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateFeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input.VideoID = r.PathValue("id")
	if errs := input.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	feedback, err := h.store.CreateFeedback(r.Context(), input)
	if err != nil {
		respondStoreError(w, h.logger, err, "Video not found", "Failed to submit feedback")
		return
	}
	respondJSON(w, http.StatusCreated, feedback)
}

// Delete handles DELETE /api/feedback/{id}
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteFeedback(r.Context(), r.PathValue("id")); err != nil {
		respondStoreError(w, h.logger, err, "Feedback not found", "Failed to delete feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
