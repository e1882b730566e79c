package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cypheruni/learn/internal/models"
)

// MemoryStore keeps the catalog in process memory. Each instance is
// isolated; tests construct their own rather than sharing globals.
type MemoryStore struct {
	mu       sync.Mutex
	opts     Options
	series   map[string]models.Series
	videos   map[string]models.Video
	feedback map[string]models.Feedback
	// videoOrder preserves insertion order for ListVideosBySeries
	videoOrder []string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts,
		series:   make(map[string]models.Series),
		videos:   make(map[string]models.Video),
		feedback: make(map[string]models.Feedback),
	}
}

func (s *MemoryStore) ListSeries(ctx context.Context) ([]models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Series, 0, len(s.series))
	for _, sr := range s.series {
		out = append(out, sr)
	}
	return out, nil
}

func (s *MemoryStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.series[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sr, nil
}

func (s *MemoryStore) CreateSeries(ctx context.Context, in models.CreateSeriesInput) (*models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr := models.Series{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		ThumbnailURL:  in.ThumbnailURL,
		TotalDuration: in.TotalDuration,
		Level:         in.Level,
		VideoCount:    0,
	}
	s.series[sr.ID] = sr
	return &sr, nil
}

func (s *MemoryStore) UpdateSeries(ctx context.Context, id string, in models.UpdateSeriesInput) (*models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.series[id]
	if !ok {
		return nil, ErrNotFound
	}
	in.Apply(&sr)
	s.series[id] = sr
	return &sr, nil
}

func (s *MemoryStore) DeleteSeries(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[id]; !ok {
		return ErrNotFound
	}
	// Cascade: drop every video in this series before the series itself
	kept := s.videoOrder[:0]
	for _, vid := range s.videoOrder {
		if s.videos[vid].SeriesID == id {
			delete(s.videos, vid)
			continue
		}
		kept = append(kept, vid)
	}
	s.videoOrder = kept
	delete(s.series, id)
	return nil
}

// cloneVideo detaches the Tags backing array so callers and the store
// cannot mutate each other's copy
func cloneVideo(v models.Video) models.Video {
	tags := make([]string, len(v.Tags))
	copy(tags, v.Tags)
	v.Tags = tags
	return v
}

func (s *MemoryStore) ListVideos(ctx context.Context) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Video, 0, len(s.videoOrder))
	for _, id := range s.videoOrder {
		out = append(out, cloneVideo(s.videos[id]))
	}
	return out, nil
}

func (s *MemoryStore) ListVideosBySeries(ctx context.Context, seriesID string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Video, 0)
	for _, id := range s.videoOrder {
		if v := s.videos[id]; v.SeriesID == seriesID {
			out = append(out, cloneVideo(v))
		}
	}
	return out, nil
}

func (s *MemoryStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	v = cloneVideo(v)
	return &v, nil
}

func (s *MemoryStore) CreateVideo(ctx context.Context, in models.CreateVideoInput) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.series[in.SeriesID]
	if !ok {
		return nil, ErrInvalidReference
	}

	v := models.Video{
		ID:          uuid.NewString(),
		SeriesID:    in.SeriesID,
		Title:       in.Title,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		BannerURL:   in.BannerURL,
		Duration:    in.Duration,
		Level:       in.Level,
		Tags:        in.Tags,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	s.videos[v.ID] = cloneVideo(v)
	s.videoOrder = append(s.videoOrder, v.ID)

	parent.VideoCount++
	s.series[parent.ID] = parent

	v = cloneVideo(v)
	return &v, nil
}

func (s *MemoryStore) UpdateVideo(ctx context.Context, id string, in models.UpdateVideoInput) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	in.Apply(&v)
	s.videos[id] = cloneVideo(v)
	v = cloneVideo(v)
	return &v, nil
}

func (s *MemoryStore) DeleteVideo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.videos, id)
	for i, vid := range s.videoOrder {
		if vid == id {
			s.videoOrder = append(s.videoOrder[:i], s.videoOrder[i+1:]...)
			break
		}
	}

	// Recompute the parent count from the live videos rather than
	// decrementing, so a stale cached value cannot drift further
	if parent, ok := s.series[v.SeriesID]; ok {
		count := 0
		for _, other := range s.videos {
			if other.SeriesID == parent.ID {
				count++
			}
		}
		parent.VideoCount = count
		s.series[parent.ID] = parent
	}
	return nil
}

func (s *MemoryStore) ListFeedbackByVideo(ctx context.Context, videoID string) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Feedback, 0)
	for _, f := range s.feedback {
		if f.VideoID == videoID {
			out = append(out, f)
		}
	}
	sortFeedbackNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) CreateFeedback(ctx context.Context, in models.CreateFeedbackInput) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.StrictFeedback {
		if _, ok := s.videos[in.VideoID]; !ok {
			return nil, ErrInvalidReference
		}
	}

	f := models.Feedback{
		ID:        uuid.NewString(),
		VideoID:   in.VideoID,
		CHandle:   in.CHandle,
		Message:   in.Message,
		Rating:    in.Rating,
		Timestamp: time.Now().UTC(),
	}
	s.feedback[f.ID] = f
	return &f, nil
}

func (s *MemoryStore) DeleteFeedback(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.feedback[id]; !ok {
		return ErrNotFound
	}
	delete(s.feedback, id)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = make(map[string]models.Series)
	s.videos = make(map[string]models.Video)
	s.feedback = make(map[string]models.Feedback)
	s.videoOrder = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
