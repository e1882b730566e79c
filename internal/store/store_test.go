package store_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

// backends lists the implementations the conformance tests run against.
// Postgres is exercised the same way in CI against a real database.
func backends(t *testing.T, opts store.Options) map[string]store.Store {
	t.Helper()

	bs, err := store.NewBoltStore(filepath.Join(t.TempDir(), "catalog.db"), opts)
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	t.Cleanup(func() { bs.Close() })

	return map[string]store.Store{
		"memory": store.NewMemoryStore(opts),
		"bolt":   bs,
	}
}

func mustCreateSeries(t *testing.T, s store.Store, name string) *models.Series {
	t.Helper()
	sr, err := s.CreateSeries(context.Background(), models.CreateSeriesInput{
		Name:        name,
		Description: "test series",
		Level:       models.LevelBeginner,
	})
	if err != nil {
		t.Fatalf("CreateSeries failed: %v", err)
	}
	return sr
}

func mustCreateVideo(t *testing.T, s store.Store, seriesID, title string) *models.Video {
	t.Helper()
	v, err := s.CreateVideo(context.Background(), models.CreateVideoInput{
		SeriesID: seriesID,
		Title:    title,
		VideoURL: "https://example.com/" + title,
		Level:    models.LevelBeginner,
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	return v
}

func TestCreateSeriesInitializesVideoCount(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			sr := mustCreateSeries(t, s, "Git 101")
			if sr.ID == "" {
				t.Fatal("expected series ID to be assigned")
			}
			if sr.VideoCount != 0 {
				t.Fatalf("expected videoCount 0, got %d", sr.VideoCount)
			}
		})
	}
}

func TestVideoCountTracksLiveVideos(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")

			var ids []string
			for i := 0; i < 3; i++ {
				v := mustCreateVideo(t, s, sr.ID, fmt.Sprintf("Video %d", i))
				ids = append(ids, v.ID)
			}

			got, err := s.GetSeries(ctx, sr.ID)
			if err != nil {
				t.Fatalf("GetSeries failed: %v", err)
			}
			if got.VideoCount != 3 {
				t.Fatalf("expected videoCount 3, got %d", got.VideoCount)
			}

			if err := s.DeleteVideo(ctx, ids[1]); err != nil {
				t.Fatalf("DeleteVideo failed: %v", err)
			}
			got, err = s.GetSeries(ctx, sr.ID)
			if err != nil {
				t.Fatalf("GetSeries failed: %v", err)
			}
			if got.VideoCount != 2 {
				t.Fatalf("expected videoCount 2 after delete, got %d", got.VideoCount)
			}

			videos, err := s.ListVideosBySeries(ctx, sr.ID)
			if err != nil {
				t.Fatalf("ListVideosBySeries failed: %v", err)
			}
			if len(videos) != got.VideoCount {
				t.Fatalf("videoCount %d does not match live count %d", got.VideoCount, len(videos))
			}
		})
	}
}

func TestCreateVideoUnknownSeriesMutatesNothing(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")

			_, err := s.CreateVideo(ctx, models.CreateVideoInput{
				SeriesID: "no-such-series",
				Title:    "Orphan",
				VideoURL: "https://example.com/orphan",
				Level:    models.LevelBeginner,
			})
			if !errors.Is(err, store.ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}

			videos, err := s.ListVideos(ctx)
			if err != nil {
				t.Fatalf("ListVideos failed: %v", err)
			}
			if len(videos) != 0 {
				t.Fatalf("expected no videos, got %d", len(videos))
			}
			got, err := s.GetSeries(ctx, sr.ID)
			if err != nil {
				t.Fatalf("GetSeries failed: %v", err)
			}
			if got.VideoCount != 0 {
				t.Fatalf("expected videoCount untouched, got %d", got.VideoCount)
			}
		})
	}
}

func TestDeleteSeriesCascadesToVideos(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			doomed := mustCreateSeries(t, s, "Doomed")
			kept := mustCreateSeries(t, s, "Kept")
			mustCreateVideo(t, s, doomed.ID, "A")
			mustCreateVideo(t, s, doomed.ID, "B")
			survivor := mustCreateVideo(t, s, kept.ID, "C")

			if err := s.DeleteSeries(ctx, doomed.ID); err != nil {
				t.Fatalf("DeleteSeries failed: %v", err)
			}

			if _, err := s.GetSeries(ctx, doomed.ID); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for deleted series, got %v", err)
			}
			videos, err := s.ListVideosBySeries(ctx, doomed.ID)
			if err != nil {
				t.Fatalf("ListVideosBySeries failed: %v", err)
			}
			if len(videos) != 0 {
				t.Fatalf("expected no videos after cascade, got %d", len(videos))
			}

			// Unrelated series untouched
			if _, err := s.GetVideo(ctx, survivor.ID); err != nil {
				t.Fatalf("expected survivor video intact: %v", err)
			}

			if err := s.DeleteSeries(ctx, doomed.ID); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestListVideosBySeriesOrder(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Ordered")

			var want []string
			for i := 0; i < 5; i++ {
				v := mustCreateVideo(t, s, sr.ID, fmt.Sprintf("Video %d", i))
				want = append(want, v.ID)
			}

			videos, err := s.ListVideosBySeries(ctx, sr.ID)
			if err != nil {
				t.Fatalf("ListVideosBySeries failed: %v", err)
			}
			if len(videos) != len(want) {
				t.Fatalf("expected %d videos, got %d", len(want), len(videos))
			}
			for i, v := range videos {
				if v.ID != want[i] {
					t.Fatalf("position %d: expected %s, got %s", i, want[i], v.ID)
				}
			}
		})
	}
}

func TestUpdateVideoMergesPartialFields(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")
			v, err := s.CreateVideo(ctx, models.CreateVideoInput{
				SeriesID:    sr.ID,
				Title:       "Intro",
				Description: "original description",
				VideoURL:    "https://example.com/intro",
				Duration:    "10:00",
				Level:       models.LevelBeginner,
				Tags:        []string{"git"},
			})
			if err != nil {
				t.Fatalf("CreateVideo failed: %v", err)
			}

			title := "X"
			if _, err := s.UpdateVideo(ctx, v.ID, models.UpdateVideoInput{Title: &title}); err != nil {
				t.Fatalf("UpdateVideo failed: %v", err)
			}

			got, err := s.GetVideo(ctx, v.ID)
			if err != nil {
				t.Fatalf("GetVideo failed: %v", err)
			}
			if got.Title != "X" {
				t.Fatalf("expected title X, got %q", got.Title)
			}
			if got.Description != "original description" || got.Duration != "10:00" || got.Level != models.LevelBeginner {
				t.Fatalf("unexpected field change: %#v", got)
			}
			if len(got.Tags) != 1 || got.Tags[0] != "git" {
				t.Fatalf("expected tags preserved, got %v", got.Tags)
			}
		})
	}
}

func TestVideoTagsDefaultToEmpty(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			sr := mustCreateSeries(t, s, "Git 101")
			v := mustCreateVideo(t, s, sr.ID, "No tags")
			if v.Tags == nil {
				t.Fatal("expected tags to default to an empty slice")
			}
			got, err := s.GetVideo(context.Background(), v.ID)
			if err != nil {
				t.Fatalf("GetVideo failed: %v", err)
			}
			if got.Tags == nil {
				t.Fatal("expected stored tags to be an empty slice")
			}
		})
	}
}

func TestReturnedVideoTagsAreDetached(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")
			v, err := s.CreateVideo(ctx, models.CreateVideoInput{
				SeriesID: sr.ID,
				Title:    "Intro",
				VideoURL: "https://example.com/intro",
				Level:    models.LevelBeginner,
				Tags:     []string{"git", "basics"},
			})
			if err != nil {
				t.Fatalf("CreateVideo failed: %v", err)
			}

			// Mutating a returned record must not reach into the store
			v.Tags[0] = "mutated"

			got, err := s.GetVideo(ctx, v.ID)
			if err != nil {
				t.Fatalf("GetVideo failed: %v", err)
			}
			if got.Tags[0] != "git" {
				t.Fatalf("stored tags changed through a returned copy: %v", got.Tags)
			}

			got.Tags[1] = "mutated"
			again, err := s.GetVideo(ctx, v.ID)
			if err != nil {
				t.Fatalf("GetVideo failed: %v", err)
			}
			if again.Tags[1] != "basics" {
				t.Fatalf("stored tags changed through a fetched copy: %v", again.Tags)
			}
		})
	}
}

func TestFeedbackNewestFirst(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var last string
			for i := 0; i < 3; i++ {
				f, err := s.CreateFeedback(ctx, models.CreateFeedbackInput{
					VideoID: "vid-1",
					CHandle: "alice",
					Message: fmt.Sprintf("Great intro, very clear! (%d)", i),
					Rating:  5,
				})
				if err != nil {
					t.Fatalf("CreateFeedback failed: %v", err)
				}
				last = f.ID
			}

			fb, err := s.ListFeedbackByVideo(ctx, "vid-1")
			if err != nil {
				t.Fatalf("ListFeedbackByVideo failed: %v", err)
			}
			if len(fb) != 3 {
				t.Fatalf("expected 3 feedback items, got %d", len(fb))
			}
			for i := 1; i < len(fb); i++ {
				if fb[i].Timestamp.After(fb[i-1].Timestamp) {
					t.Fatalf("feedback not in newest-first order at %d", i)
				}
			}
			// Equal timestamps are possible at this resolution; the new
			// item must still be present
			found := false
			for _, f := range fb {
				if f.ID == last {
					found = true
				}
			}
			if !found {
				t.Fatal("latest feedback missing from listing")
			}
		})
	}
}

func TestStrictFeedbackRejectsUnknownVideo(t *testing.T) {
	for name, s := range backends(t, store.Options{StrictFeedback: true}) {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateFeedback(context.Background(), models.CreateFeedbackInput{
				VideoID: "no-such-video",
				CHandle: "alice",
				Message: "Great intro, very clear!",
				Rating:  5,
			})
			if !errors.Is(err, store.ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}
		})
	}
}

func TestPermissiveFeedbackAcceptsUnknownVideo(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			f, err := s.CreateFeedback(context.Background(), models.CreateFeedbackInput{
				VideoID: "no-such-video",
				CHandle: "alice",
				Message: "Great intro, very clear!",
				Rating:  5,
			})
			if err != nil {
				t.Fatalf("CreateFeedback failed: %v", err)
			}
			if f.ID == "" || f.Timestamp.IsZero() {
				t.Fatalf("expected server-assigned id and timestamp, got %#v", f)
			}
		})
	}
}

func TestDeleteFeedback(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f, err := s.CreateFeedback(ctx, models.CreateFeedbackInput{
				VideoID: "vid-1",
				CHandle: "alice",
				Message: "Great intro, very clear!",
				Rating:  4,
			})
			if err != nil {
				t.Fatalf("CreateFeedback failed: %v", err)
			}
			if err := s.DeleteFeedback(ctx, f.ID); err != nil {
				t.Fatalf("DeleteFeedback failed: %v", err)
			}
			if err := s.DeleteFeedback(ctx, f.ID); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestUpdateSeriesCannotTouchVideoCount(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")
			mustCreateVideo(t, s, sr.ID, "Intro")

			newName := "Git 102"
			updated, err := s.UpdateSeries(ctx, sr.ID, models.UpdateSeriesInput{Name: &newName})
			if err != nil {
				t.Fatalf("UpdateSeries failed: %v", err)
			}
			if updated.Name != "Git 102" {
				t.Fatalf("expected renamed series, got %q", updated.Name)
			}
			if updated.VideoCount != 1 {
				t.Fatalf("expected videoCount preserved at 1, got %d", updated.VideoCount)
			}
		})
	}
}

func TestResetEmptiesCatalog(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sr := mustCreateSeries(t, s, "Git 101")
			mustCreateVideo(t, s, sr.ID, "Intro")

			if err := s.Reset(ctx); err != nil {
				t.Fatalf("Reset failed: %v", err)
			}
			series, err := s.ListSeries(ctx)
			if err != nil {
				t.Fatalf("ListSeries failed: %v", err)
			}
			if len(series) != 0 {
				t.Fatalf("expected empty catalog, got %d series", len(series))
			}
		})
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	for name, s := range backends(t, store.Options{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Seed(ctx, s); err != nil {
				t.Fatalf("Seed failed: %v", err)
			}
			first, err := s.ListSeries(ctx)
			if err != nil {
				t.Fatalf("ListSeries failed: %v", err)
			}
			if len(first) == 0 {
				t.Fatal("expected seeded series")
			}

			if err := store.Seed(ctx, s); err != nil {
				t.Fatalf("second Seed failed: %v", err)
			}
			second, err := s.ListSeries(ctx)
			if err != nil {
				t.Fatalf("ListSeries failed: %v", err)
			}
			if len(second) != len(first) {
				t.Fatalf("expected %d series after reseed, got %d", len(first), len(second))
			}
		})
	}
}
