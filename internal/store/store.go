// Package store owns the series, video and feedback collections. All
// cascade and videoCount-maintenance rules live here; handlers depend
// only on the Store interface.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/cypheruni/learn/internal/models"
)

// Sentinel errors returned by Store implementations
var (
	// ErrNotFound indicates the requested entity id does not resolve
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidReference indicates a foreign key does not resolve,
	// e.g. a video created against a nonexistent series
	ErrInvalidReference = errors.New("referenced entity not found")
)

// Store is the persistence abstraction for the catalog. Implementations
// must be safe for concurrent use by HTTP handlers.
//
// Ordering guarantees:
//   - ListVideosBySeries: insertion order (memory) or creation-time
//     ascending (bolt, postgres), consistent per implementation.
//   - ListFeedbackByVideo: timestamp descending, newest first.
//   - ListSeries and ListVideos: unspecified; callers must not depend
//     on store order.
type Store interface {
	ListSeries(ctx context.Context) ([]models.Series, error)
	GetSeries(ctx context.Context, id string) (*models.Series, error)
	CreateSeries(ctx context.Context, in models.CreateSeriesInput) (*models.Series, error)
	UpdateSeries(ctx context.Context, id string, in models.UpdateSeriesInput) (*models.Series, error)
	// DeleteSeries deletes the series and every video whose seriesId
	// matches, atomically. If the cascade fails nothing is deleted.
	DeleteSeries(ctx context.Context, id string) error

	ListVideos(ctx context.Context) ([]models.Video, error)
	ListVideosBySeries(ctx context.Context, seriesID string) ([]models.Video, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	// CreateVideo fails with ErrInvalidReference when the parent series
	// does not exist, without mutating anything. On success the parent's
	// videoCount is incremented.
	CreateVideo(ctx context.Context, in models.CreateVideoInput) (*models.Video, error)
	UpdateVideo(ctx context.Context, id string, in models.UpdateVideoInput) (*models.Video, error)
	// DeleteVideo removes the video and recomputes the parent series'
	// videoCount from the live video count.
	DeleteVideo(ctx context.Context, id string) error

	ListFeedbackByVideo(ctx context.Context, videoID string) ([]models.Feedback, error)
	CreateFeedback(ctx context.Context, in models.CreateFeedbackInput) (*models.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error

	// Reset drops all catalog data. Used by tests and the seeder.
	Reset(ctx context.Context) error
	Close() error
}

// Options tune store behavior shared by all implementations
type Options struct {
	// StrictFeedback makes CreateFeedback fail with ErrInvalidReference
	// when the target video does not exist. The default is permissive:
	// feedback against unknown video ids is accepted, matching the
	// platform's historical behavior.
	StrictFeedback bool
}

// sortFeedbackNewestFirst orders feedback by timestamp descending.
// Ties keep a stable id order so repeated listings agree.
func sortFeedbackNewestFirst(fb []models.Feedback) {
	sort.SliceStable(fb, func(i, j int) bool {
		if fb[i].Timestamp.Equal(fb[j].Timestamp) {
			return fb[i].ID < fb[j].ID
		}
		return fb[i].Timestamp.After(fb[j].Timestamp)
	})
}
