package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cypheruni/learn/internal/handlers"
	"github.com/cypheruni/learn/internal/models"
	"github.com/cypheruni/learn/internal/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := store.NewMemoryStore(store.Options{})
	logger := log.New(io.Discard, "", 0)

	mux := http.NewServeMux()
	handlers.RegisterCatalog(mux, st, logger, nil)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// request performs an HTTP call, decodes the JSON body into out when out
// is non-nil, and returns the status code.
func request(t *testing.T, srv *httptest.Server, method, path string, body, out interface{}) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
}

func createSeries(t *testing.T, srv *httptest.Server, name string) models.Series {
	t.Helper()
	var out models.Series
	status := request(t, srv, http.MethodPost, "/api/series", models.CreateSeriesInput{
		Name:         name,
		Description:  "desc for " + name,
		ThumbnailURL: "https://example.com/thumb.png",
		Level:        models.LevelBeginner,
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("create series: status %d", status)
	}
	return out
}

func createVideo(t *testing.T, srv *httptest.Server, seriesID, title string) models.Video {
	t.Helper()
	var out models.Video
	status := request(t, srv, http.MethodPost, "/api/videos", models.CreateVideoInput{
		SeriesID: seriesID,
		Title:    title,
		VideoURL: "https://example.com/" + title + ".mp4",
		Level:    models.LevelBeginner,
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("create video: status %d", status)
	}
	return out
}

func TestCatalogLifecycle(t *testing.T) {
	srv := newServer(t)

	series := createSeries(t, srv, "Git 101")
	if series.VideoCount != 0 {
		t.Fatalf("new series videoCount = %d, want 0", series.VideoCount)
	}

	intro := createVideo(t, srv, series.ID, "intro")
	branching := createVideo(t, srv, series.ID, "branching")

	var got models.Series
	if status := request(t, srv, http.MethodGet, "/api/series/"+series.ID, nil, &got); status != http.StatusOK {
		t.Fatalf("get series: status %d", status)
	}
	if got.VideoCount != 2 {
		t.Fatalf("videoCount after two videos = %d, want 2", got.VideoCount)
	}

	var videos []models.Video
	request(t, srv, http.MethodGet, "/api/series/"+series.ID+"/videos", nil, &videos)
	if len(videos) != 2 || videos[0].ID != intro.ID || videos[1].ID != branching.ID {
		t.Fatalf("series videos out of order: %+v", videos)
	}

	// Removing a video brings the count back down
	if status := request(t, srv, http.MethodDelete, "/api/videos/"+intro.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete video: status %d", status)
	}
	request(t, srv, http.MethodGet, "/api/series/"+series.ID, nil, &got)
	if got.VideoCount != 1 {
		t.Fatalf("videoCount after delete = %d, want 1", got.VideoCount)
	}

	// Deleting the series cascades to its remaining videos
	if status := request(t, srv, http.MethodDelete, "/api/series/"+series.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete series: status %d", status)
	}
	if status := request(t, srv, http.MethodGet, "/api/videos/"+branching.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("cascaded video still reachable: status %d", status)
	}
}

func TestCreateSeriesValidation(t *testing.T) {
	srv := newServer(t)

	var body errorBody
	status := request(t, srv, http.MethodPost, "/api/series", models.CreateSeriesInput{
		Description: "no name",
		Level:       "Expert",
	}, &body)
	if status != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}

	fields := make(map[string]bool)
	for _, fe := range body.Errors {
		fields[fe.Field] = true
	}
	if !fields["name"] || !fields["level"] {
		t.Fatalf("missing field errors, got %+v", body.Errors)
	}
}

func TestUpdateSeriesPartialMerge(t *testing.T) {
	srv := newServer(t)
	series := createSeries(t, srv, "Git 101")

	newName := "Git Fundamentals"
	var updated models.Series
	status := request(t, srv, http.MethodPut, "/api/series/"+series.ID, models.UpdateSeriesInput{
		Name: &newName,
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("update series: status %d", status)
	}
	if updated.Name != newName {
		t.Fatalf("name = %q, want %q", updated.Name, newName)
	}
	if updated.Description != series.Description || updated.Level != series.Level {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestCreateVideoUnknownSeries(t *testing.T) {
	srv := newServer(t)

	var body errorBody
	status := request(t, srv, http.MethodPost, "/api/videos", models.CreateVideoInput{
		SeriesID: "missing",
		Title:    "orphan",
		VideoURL: "https://example.com/orphan.mp4",
		Level:    models.LevelBeginner,
	}, &body)
	if status != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}
}

func TestFeedbackValidationAndOrdering(t *testing.T) {
	srv := newServer(t)
	series := createSeries(t, srv, "Git 101")
	video := createVideo(t, srv, series.ID, "intro")

	// Out-of-range rating is rejected
	var body errorBody
	status := request(t, srv, http.MethodPost, "/api/videos/"+video.ID+"/feedback", models.CreateFeedbackInput{
		CHandle: "@sam",
		Message: "this rating is not valid",
		Rating:  6,
	}, &body)
	if status != http.StatusBadRequest {
		t.Fatalf("rating 6: status %d, want 400", status)
	}

	for _, in := range []models.CreateFeedbackInput{
		{CHandle: "@first", Message: "posted this one first", Rating: 4},
		{CHandle: "@second", Message: "posted this one second", Rating: 5},
	} {
		if status := request(t, srv, http.MethodPost, "/api/videos/"+video.ID+"/feedback", in, nil); status != http.StatusCreated {
			t.Fatalf("create feedback: status %d", status)
		}
	}

	var list []models.Feedback
	request(t, srv, http.MethodGet, "/api/videos/"+video.ID+"/feedback", nil, &list)
	if len(list) != 2 {
		t.Fatalf("got %d feedback items, want 2", len(list))
	}
	if list[0].CHandle != "@second" || list[1].CHandle != "@first" {
		t.Fatalf("feedback not newest-first: %+v", list)
	}
}

func TestFeedbackVideoIDComesFromPath(t *testing.T) {
	srv := newServer(t)
	series := createSeries(t, srv, "Git 101")
	video := createVideo(t, srv, series.ID, "intro")

	// The body smuggles a different videoId; the path wins
	payload := map[string]interface{}{
		"cHandle": "@sam",
		"message": "path should win over body",
		"rating":  4,
		"videoId": "someone-elses-video",
	}
	var created models.Feedback
	status := request(t, srv, http.MethodPost, "/api/videos/"+video.ID+"/feedback", payload, &created)
	if status != http.StatusCreated {
		t.Fatalf("create feedback: status %d", status)
	}
	if created.VideoID != video.ID {
		t.Fatalf("videoId = %q, want %q", created.VideoID, video.ID)
	}
}

func TestNotFoundResponses(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/series/missing", nil},
		{http.MethodDelete, "/api/series/missing", nil},
		{http.MethodGet, "/api/videos/missing", nil},
		{http.MethodPut, "/api/videos/missing", models.UpdateVideoInput{}},
		{http.MethodDelete, "/api/feedback/missing", nil},
	}
	for _, tc := range cases {
		var body errorBody
		status := request(t, srv, tc.method, tc.path, tc.body, &body)
		if status != http.StatusNotFound {
			t.Errorf("%s %s: status %d, want 404", tc.method, tc.path, status)
		}
		if body.Message == "" {
			t.Errorf("%s %s: empty error message", tc.method, tc.path)
		}
	}
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Post(srv.URL+"/api/series", "application/json", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}
