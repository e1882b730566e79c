package models

// Video represents a single tutorial belonging to exactly one series
type Video struct {
	ID          string   `db:"id" json:"id"`
	SeriesID    string   `db:"seriesId" json:"seriesId"`
	Title       string   `db:"title" json:"title"`
	Description string   `db:"description" json:"description"`
	VideoURL    string   `db:"videoUrl" json:"videoUrl"`
	BannerURL   string   `db:"bannerUrl" json:"bannerUrl"`
	Duration    string   `db:"duration" json:"duration"`
	Level       string   `db:"level" json:"level"`
	Tags        []string `db:"tags" json:"tags"`
}

// CreateVideoInput represents the input for creating a video
type CreateVideoInput struct {
	SeriesID    string   `json:"seriesId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	VideoURL    string   `json:"videoUrl" validate:"required"`
	BannerURL   string   `json:"bannerUrl"`
	Duration    string   `json:"duration"`
	Level       string   `json:"level" validate:"required"`
	Tags        []string `json:"tags"`
}

// Validate checks field constraints and returns one error per bad field
func (in *CreateVideoInput) Validate() []FieldError {
	var errs []FieldError
	if in.SeriesID == "" {
		errs = append(errs, FieldError{Field: "seriesId", Message: "Series ID is required"})
	}
	if in.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
	}
	if in.VideoURL == "" {
		errs = append(errs, FieldError{Field: "videoUrl", Message: "Video URL is required"})
	}
	if !ValidLevel(in.Level) {
		errs = append(errs, FieldError{Field: "level", Message: "Level must be Beginner, Intermediate or Advanced"})
	}
	return errs
}

// UpdateVideoInput represents the input for a partial video update.
// Nil fields are left unchanged. seriesId is not updatable: a video
// never moves between series.
type UpdateVideoInput struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	VideoURL    *string  `json:"videoUrl,omitempty"`
	BannerURL   *string  `json:"bannerUrl,omitempty"`
	Duration    *string  `json:"duration,omitempty"`
	Level       *string  `json:"level,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks constraints on the fields that are present
func (in *UpdateVideoInput) Validate() []FieldError {
	var errs []FieldError
	if in.Title != nil && *in.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title cannot be empty"})
	}
	if in.Level != nil && !ValidLevel(*in.Level) {
		errs = append(errs, FieldError{Field: "level", Message: "Level must be Beginner, Intermediate or Advanced"})
	}
	return errs
}

// Apply merges the provided fields into v
func (in *UpdateVideoInput) Apply(v *Video) {
	if in.Title != nil {
		v.Title = *in.Title
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.VideoURL != nil {
		v.VideoURL = *in.VideoURL
	}
	if in.BannerURL != nil {
		v.BannerURL = *in.BannerURL
	}
	if in.Duration != nil {
		v.Duration = *in.Duration
	}
	if in.Level != nil {
		v.Level = *in.Level
	}
	if in.Tags != nil {
		v.Tags = in.Tags
	}
}
