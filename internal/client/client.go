// Package client is the data-fetching facade used by catalog UIs. Reads
// are served from a keyed cache after the first fetch; mutations call the
// API and invalidate exactly the cache entries their collection touched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cypheruni/learn/internal/models"
)

// APIError is a non-2xx response from the catalog service
type APIError struct {
	Status  int
	Message string
	Fields  []models.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api: %d %s", e.Status, e.Message)
}

// Client talks to the catalog service
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache
}

// New creates a client for the catalog service at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   newCache(),
	}
}

// ListSeries returns all series
func (c *Client) ListSeries(ctx context.Context) ([]models.Series, error) {
	var out []models.Series
	err := c.cached(ctx, keySeriesList(), "/api/series", &out)
	return out, err
}

// GetSeries returns one series by id
func (c *Client) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	var out models.Series
	if err := c.cached(ctx, keySeries(id), "/api/series/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSeries creates a series and invalidates the series list
func (c *Client) CreateSeries(ctx context.Context, in models.CreateSeriesInput) (*models.Series, error) {
	var out models.Series
	if err := c.do(ctx, http.MethodPost, "/api/series", in, &out); err != nil {
		return nil, err
	}
	c.cache.invalidate(keySeriesList())
	return &out, nil
}

// UpdateSeries applies a partial update to a series
func (c *Client) UpdateSeries(ctx context.Context, id string, in models.UpdateSeriesInput) (*models.Series, error) {
	var out models.Series
	if err := c.do(ctx, http.MethodPut, "/api/series/"+id, in, &out); err != nil {
		return nil, err
	}
	c.cache.invalidate(keySeriesList(), keySeries(id))
	return &out, nil
}

// DeleteSeries deletes a series and its videos
func (c *Client) DeleteSeries(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/series/"+id, nil, nil); err != nil {
		return err
	}
	c.cache.invalidate(keySeriesList(), keySeries(id), keySeriesVideos(id), keyVideoList())
	return nil
}

// ListSeriesVideos returns the videos belonging to a series
func (c *Client) ListSeriesVideos(ctx context.Context, seriesID string) ([]models.Video, error) {
	var out []models.Video
	err := c.cached(ctx, keySeriesVideos(seriesID), "/api/series/"+seriesID+"/videos", &out)
	return out, err
}

// ListVideos returns every video in the catalog
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	var out []models.Video
	err := c.cached(ctx, keyVideoList(), "/api/videos", &out)
	return out, err
}

// GetVideo returns one video by id
func (c *Client) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var out models.Video
	if err := c.cached(ctx, keyVideo(id), "/api/videos/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVideo creates a video. The parent series entry is invalidated
// too, since its videoCount changed.
func (c *Client) CreateVideo(ctx context.Context, in models.CreateVideoInput) (*models.Video, error) {
	var out models.Video
	if err := c.do(ctx, http.MethodPost, "/api/videos", in, &out); err != nil {
		return nil, err
	}
	c.cache.invalidate(
		keyVideoList(),
		keySeriesVideos(out.SeriesID),
		keySeries(out.SeriesID),
		keySeriesList(),
	)
	return &out, nil
}

// UpdateVideo applies a partial update to a video
func (c *Client) UpdateVideo(ctx context.Context, id string, in models.UpdateVideoInput) (*models.Video, error) {
	var out models.Video
	if err := c.do(ctx, http.MethodPut, "/api/videos/"+id, in, &out); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyVideo(id), keyVideoList(), keySeriesVideos(out.SeriesID))
	return &out, nil
}

// DeleteVideo deletes a video. seriesID names the parent so its cached
// entry (videoCount) and video list can be dropped.
func (c *Client) DeleteVideo(ctx context.Context, id, seriesID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/videos/"+id, nil, nil); err != nil {
		return err
	}
	c.cache.invalidate(
		keyVideo(id),
		keyVideoList(),
		keySeriesVideos(seriesID),
		keySeries(seriesID),
		keySeriesList(),
	)
	return nil
}

// ListVideoFeedback returns a video's feedback, newest first
func (c *Client) ListVideoFeedback(ctx context.Context, videoID string) ([]models.Feedback, error) {
	var out []models.Feedback
	err := c.cached(ctx, keyVideoFeedback(videoID), "/api/videos/"+videoID+"/feedback", &out)
	return out, err
}

// CreateFeedback submits feedback against a video
func (c *Client) CreateFeedback(ctx context.Context, videoID string, in models.CreateFeedbackInput) (*models.Feedback, error) {
	var out models.Feedback
	if err := c.do(ctx, http.MethodPost, "/api/videos/"+videoID+"/feedback", in, &out); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyVideoFeedback(videoID))
	return &out, nil
}

// DeleteFeedback removes one feedback item. videoID names the list to
// invalidate.
func (c *Client) DeleteFeedback(ctx context.Context, id, videoID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/feedback/"+id, nil, nil); err != nil {
		return err
	}
	c.cache.invalidate(keyVideoFeedback(videoID))
	return nil
}

// cached serves key from the cache, fetching path on a miss. Concurrent
// misses on the same key share one fetch.
func (c *Client) cached(ctx context.Context, key, path string, dest interface{}) error {
	if data, ok := c.cache.get(key); ok {
		return json.Unmarshal(data, dest)
	}

	lock := c.cache.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	// A waiter may find the entry filled by the fetch it waited on
	if data, ok := c.cache.get(key); ok {
		return json.Unmarshal(data, dest)
	}

	data, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}
	c.cache.set(key, data)
	return json.Unmarshal(data, dest)
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}
	return body, nil
}

// do performs a mutation. The cache is left untouched on failure; the
// caller invalidates on success.
func (c *Client) do(ctx context.Context, method, path string, in, dest interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, body)
	}
	if dest != nil {
		return json.Unmarshal(body, dest)
	}
	return nil
}

func apiError(status int, body []byte) error {
	apiErr := &APIError{Status: status, Message: "request failed"}
	var parsed struct {
		Message string              `json:"message"`
		Errors  []models.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
		apiErr.Fields = parsed.Errors
	}
	return apiErr
}
