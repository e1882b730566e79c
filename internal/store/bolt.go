package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/cypheruni/learn/internal/models"
)

// Bucket names
var (
	bucketSeries   = []byte("series")
	bucketVideos   = []byte("videos")
	bucketFeedback = []byte("feedback")
)

// videoDoc wraps a video with its creation time so ListVideosBySeries
// can order by creation-time ascending
type videoDoc struct {
	models.Video
	CreatedAt time.Time `json:"createdAt"`
}

// BoltStore persists the catalog as JSON documents in a BoltDB file,
// one bucket per collection.
type BoltStore struct {
	db   *bolt.DB
	opts Options
}

// NewBoltStore opens (creating if needed) the catalog database at path
func NewBoltStore(path string, opts Options) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSeries, bucketVideos, bucketFeedback} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db, opts: opts}, nil
}

func (s *BoltStore) ListSeries(ctx context.Context) ([]models.Series, error) {
	out := make([]models.Series, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSeries).ForEach(func(k, v []byte) error {
			var sr models.Series
			if err := json.Unmarshal(v, &sr); err != nil {
				return err
			}
			out = append(out, sr)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return out, nil
}

func (s *BoltStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	var sr models.Series
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSeries).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &sr)
	})
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (s *BoltStore) CreateSeries(ctx context.Context, in models.CreateSeriesInput) (*models.Series, error) {
	sr := models.Series{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		ThumbnailURL:  in.ThumbnailURL,
		TotalDuration: in.TotalDuration,
		Level:         in.Level,
		VideoCount:    0,
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketSeries), sr.ID, sr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	return &sr, nil
}

func (s *BoltStore) UpdateSeries(ctx context.Context, id string, in models.UpdateSeriesInput) (*models.Series, error) {
	var sr models.Series
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSeries)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &sr); err != nil {
			return err
		}
		in.Apply(&sr)
		return putJSON(b, id, sr)
	})
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (s *BoltStore) DeleteSeries(ctx context.Context, id string) error {
	// Single Update tx: either the series and all its videos go, or
	// nothing does
	return s.db.Update(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bucketSeries)
		if sb.Get([]byte(id)) == nil {
			return ErrNotFound
		}

		vb := tx.Bucket(bucketVideos)
		var victims [][]byte
		err := vb.ForEach(func(k, v []byte) error {
			var doc videoDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if doc.SeriesID == id {
				victims = append(victims, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range victims {
			if err := vb.Delete(k); err != nil {
				return err
			}
		}
		return sb.Delete([]byte(id))
	})
}

func (s *BoltStore) ListVideos(ctx context.Context) ([]models.Video, error) {
	docs, err := s.videoDocs(func(videoDoc) bool { return true })
	if err != nil {
		return nil, err
	}
	return docsToVideos(docs), nil
}

func (s *BoltStore) ListVideosBySeries(ctx context.Context, seriesID string) ([]models.Video, error) {
	docs, err := s.videoDocs(func(d videoDoc) bool { return d.SeriesID == seriesID })
	if err != nil {
		return nil, err
	}
	return docsToVideos(docs), nil
}

func (s *BoltStore) videoDocs(keep func(videoDoc) bool) ([]videoDoc, error) {
	var docs []videoDoc
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVideos).ForEach(func(k, v []byte) error {
			var doc videoDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if keep(doc) {
				docs = append(docs, doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	sortVideoDocsByCreation(docs)
	return docs, nil
}

func (s *BoltStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var doc videoDoc
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketVideos).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc.Video, nil
}

func (s *BoltStore) CreateVideo(ctx context.Context, in models.CreateVideoInput) (*models.Video, error) {
	doc := videoDoc{
		Video: models.Video{
			ID:          uuid.NewString(),
			SeriesID:    in.SeriesID,
			Title:       in.Title,
			Description: in.Description,
			VideoURL:    in.VideoURL,
			BannerURL:   in.BannerURL,
			Duration:    in.Duration,
			Level:       in.Level,
			Tags:        in.Tags,
		},
		CreatedAt: time.Now().UTC(),
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bucketSeries)
		data := sb.Get([]byte(in.SeriesID))
		if data == nil {
			return ErrInvalidReference
		}
		var parent models.Series
		if err := json.Unmarshal(data, &parent); err != nil {
			return err
		}

		if err := putJSON(tx.Bucket(bucketVideos), doc.ID, doc); err != nil {
			return err
		}
		parent.VideoCount++
		return putJSON(sb, parent.ID, parent)
	})
	if err != nil {
		return nil, err
	}
	return &doc.Video, nil
}

func (s *BoltStore) UpdateVideo(ctx context.Context, id string, in models.UpdateVideoInput) (*models.Video, error) {
	var doc videoDoc
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVideos)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		in.Apply(&doc.Video)
		return putJSON(b, id, doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc.Video, nil
}

func (s *BoltStore) DeleteVideo(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		vb := tx.Bucket(bucketVideos)
		data := vb.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var doc videoDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if err := vb.Delete([]byte(id)); err != nil {
			return err
		}

		// Recompute the parent count from the live videos in this tx
		sb := tx.Bucket(bucketSeries)
		parentData := sb.Get([]byte(doc.SeriesID))
		if parentData == nil {
			return nil
		}
		var parent models.Series
		if err := json.Unmarshal(parentData, &parent); err != nil {
			return err
		}
		count := 0
		err := vb.ForEach(func(k, v []byte) error {
			var other videoDoc
			if err := json.Unmarshal(v, &other); err != nil {
				return err
			}
			if other.SeriesID == parent.ID {
				count++
			}
			return nil
		})
		if err != nil {
			return err
		}
		parent.VideoCount = count
		return putJSON(sb, parent.ID, parent)
	})
}

func (s *BoltStore) ListFeedbackByVideo(ctx context.Context, videoID string) ([]models.Feedback, error) {
	out := make([]models.Feedback, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFeedback).ForEach(func(k, v []byte) error {
			var f models.Feedback
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			if f.VideoID == videoID {
				out = append(out, f)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	sortFeedbackNewestFirst(out)
	return out, nil
}

func (s *BoltStore) CreateFeedback(ctx context.Context, in models.CreateFeedbackInput) (*models.Feedback, error) {
	f := models.Feedback{
		ID:        uuid.NewString(),
		VideoID:   in.VideoID,
		CHandle:   in.CHandle,
		Message:   in.Message,
		Rating:    in.Rating,
		Timestamp: time.Now().UTC(),
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if s.opts.StrictFeedback {
			if tx.Bucket(bucketVideos).Get([]byte(in.VideoID)) == nil {
				return ErrInvalidReference
			}
		}
		return putJSON(tx.Bucket(bucketFeedback), f.ID, f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *BoltStore) DeleteFeedback(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFeedback)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) Reset(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSeries, bucketVideos, bucketFeedback} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func sortVideoDocsByCreation(docs []videoDoc) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
}

func docsToVideos(docs []videoDoc) []models.Video {
	out := make([]models.Video, len(docs))
	for i, d := range docs {
		out[i] = d.Video
	}
	return out
}

func putJSON(b *bolt.Bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}
