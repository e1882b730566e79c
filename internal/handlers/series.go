package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

// SeriesHandler handles series-related requests
type SeriesHandler struct {
	store  store.Store
	logger *log.Logger
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(st store.Store, logger *log.Logger) *SeriesHandler {
	return &SeriesHandler{store: st, logger: logger}
}

// List handles GET /api/series
func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	series, err := h.store.ListSeries(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list series: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch series")
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// Get handles GET /api/series/{id}
func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	series, err := h.store.GetSeries(r.Context(), r.PathValue("id"))
	if err != nil {
		respondStoreError(w, h.logger, err, "Series not found", "Failed to fetch series")
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// Create handles POST /api/series
func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateSeriesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	series, err := h.store.CreateSeries(r.Context(), input)
	if err != nil {
		h.logger.Printf("Failed to create series: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create series")
		return
	}
	respondJSON(w, http.StatusCreated, series)
}

// Update handles PUT /api/series/{id}
func (h *SeriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateSeriesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	series, err := h.store.UpdateSeries(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondStoreError(w, h.logger, err, "Series not found", "Failed to update series")
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// Delete handles DELETE /api/series/{id}. Child videos are removed in the
// same store operation; on cascade failure the series is left in place.
func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSeries(r.Context(), r.PathValue("id")); err != nil {
		respondStoreError(w, h.logger, err, "Series not found", "Failed to delete series")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVideos handles GET /api/series/{id}/videos
func (h *SeriesHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideosBySeries(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Printf("Failed to list videos: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch videos")
		return
	}
	respondJSON(w, http.StatusOK, videos)
}
