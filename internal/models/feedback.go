package models

import (
	"time"
	"unicode/utf8"
)

// MinFeedbackMessageLen is the shortest accepted feedback message,
// counted in characters, not bytes
const MinFeedbackMessageLen = 10

// Feedback represents a rating and comment submitted against a video.
// Immutable once created, except for admin delete.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	VideoID   string    `db:"videoId" json:"videoId"`
	CHandle   string    `db:"cHandle" json:"cHandle"`
	Message   string    `db:"message" json:"message"`
	Rating    int       `db:"rating" json:"rating"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// CreateFeedbackInput represents the input for submitting feedback.
// VideoID is taken from the request path, never from the body.
type CreateFeedbackInput struct {
	VideoID string `json:"-"`
	CHandle string `json:"cHandle" validate:"required"`
	Message string `json:"message" validate:"min=10"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// Validate checks field constraints and returns one error per bad field
func (in *CreateFeedbackInput) Validate() []FieldError {
	var errs []FieldError
	if in.CHandle == "" {
		errs = append(errs, FieldError{Field: "cHandle", Message: "Handle is required"})
	}
	if utf8.RuneCountInString(in.Message) < MinFeedbackMessageLen {
		errs = append(errs, FieldError{Field: "message", Message: "Feedback must be at least 10 characters"})
	}
	if in.Rating < 1 || in.Rating > 5 {
		errs = append(errs, FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	return errs
}

// FieldError describes a single validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
