package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

// VideoHandler handles video-related requests
type VideoHandler struct {
	store  store.Store
	logger *log.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(st store.Store, logger *log.Logger) *VideoHandler {
	return &VideoHandler{store: st, logger: logger}
}

// List handles GET /api/videos (admin panel listing)
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list videos: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch videos")
		return
	}
	respondJSON(w, http.StatusOK, videos)
}

// Get handles GET /api/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.store.GetVideo(r.Context(), r.PathValue("id"))
	if err != nil {
		respondStoreError(w, h.logger, err, "Video not found", "Failed to fetch video")
		return
	}
	respondJSON(w, http.StatusOK, video)
}

// Create handles POST /api/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateVideoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	video, err := h.store.CreateVideo(r.Context(), input)
	if err != nil {
		respondStoreError(w, h.logger, err, "Series not found", "Failed to create video")
		return
	}
	respondJSON(w, http.StatusCreated, video)
}

// Update handles PUT /api/videos/{id}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateVideoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	video, err := h.store.UpdateVideo(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondStoreError(w, h.logger, err, "Video not found", "Failed to update video")
		return
	}
	respondJSON(w, http.StatusOK, video)
}

// Delete handles DELETE /api/videos/{id}. The store recomputes the parent
// series' video count from the surviving videos.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteVideo(r.Context(), r.PathValue("id")); err != nil {
		respondStoreError(w, h.logger, err, "Video not found", "Failed to delete video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
