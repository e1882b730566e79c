package models

// Skill levels a series or video can be labelled with
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// ValidLevel reports whether level is one of the known skill levels
func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Series represents a collection of related tutorial videos
type Series struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Description   string `db:"description" json:"description"`
	ThumbnailURL  string `db:"thumbnailUrl" json:"thumbnailUrl"`
	TotalDuration string `db:"totalDuration" json:"totalDuration"`
	Level         string `db:"level" json:"level"`
	// VideoCount is a cached denormalization maintained by the store on
	// video create/delete. Never set directly by clients.
	VideoCount int `db:"videoCount" json:"videoCount"`
}

// CreateSeriesInput represents the input for creating a series
type CreateSeriesInput struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description" validate:"required"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	TotalDuration string `json:"totalDuration"`
	Level         string `json:"level" validate:"required"`
}

// Validate checks field constraints and returns one error per bad field
func (in *CreateSeriesInput) Validate() []FieldError {
	var errs []FieldError
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	}
	if in.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "Description is required"})
	}
	if !ValidLevel(in.Level) {
		errs = append(errs, FieldError{Field: "level", Message: "Level must be Beginner, Intermediate or Advanced"})
	}
	return errs
}

// UpdateSeriesInput represents the input for a partial series update.
// Nil fields are left unchanged. videoCount is intentionally absent:
// it is maintained only by video create/delete.
type UpdateSeriesInput struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	ThumbnailURL  *string `json:"thumbnailUrl,omitempty"`
	TotalDuration *string `json:"totalDuration,omitempty"`
	Level         *string `json:"level,omitempty"`
}

// Validate checks constraints on the fields that are present
func (in *UpdateSeriesInput) Validate() []FieldError {
	var errs []FieldError
	if in.Name != nil && *in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name cannot be empty"})
	}
	if in.Level != nil && !ValidLevel(*in.Level) {
		errs = append(errs, FieldError{Field: "level", Message: "Level must be Beginner, Intermediate or Advanced"})
	}
	return errs
}

// Apply merges the provided fields into s
func (in *UpdateSeriesInput) Apply(s *Series) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.ThumbnailURL != nil {
		s.ThumbnailURL = *in.ThumbnailURL
	}
	if in.TotalDuration != nil {
		s.TotalDuration = *in.TotalDuration
	}
	if in.Level != nil {
		s.Level = *in.Level
	}
}
