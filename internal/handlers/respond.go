package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

// errorResponse is the JSON body for every non-2xx response. Errors is
// populated only for validation failures.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

func respondValidation(w http.ResponseWriter, errs []models.FieldError) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}

// respondStoreError maps store errors to status codes. Unexpected errors
// become a generic 500; the detail stays in the server log only.
func respondStoreError(w http.ResponseWriter, logger *log.Logger, err error, notFoundMsg, genericMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrInvalidReference):
		respondError(w, http.StatusBadRequest, "Referenced entity does not exist")
	default:
		logger.Printf("%s: %v", genericMsg, err)
		respondError(w, http.StatusInternalServerError, genericMsg)
	}
}
