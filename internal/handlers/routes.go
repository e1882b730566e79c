package handlers

import (
	"log"
	"net/http"

	"github.com/cypheruni/learn/internal/store"
)

// RegisterCatalog wires the catalog API routes onto mux. wrap is applied
// to every route; pass nil for none.
func RegisterCatalog(mux *http.ServeMux, st store.Store, logger *log.Logger, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(h http.Handler) http.Handler { return h }
	}
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, wrap(fn))
	}

	series := NewSeriesHandler(st, logger)
	handle("GET /api/series", series.List)
	handle("POST /api/series", series.Create)
	handle("GET /api/series/{id}", series.Get)
	handle("PUT /api/series/{id}", series.Update)
	handle("DELETE /api/series/{id}", series.Delete)
	handle("GET /api/series/{id}/videos", series.ListVideos)

	videos := NewVideoHandler(st, logger)
	handle("GET /api/videos", videos.List)
	handle("POST /api/videos", videos.Create)
	handle("GET /api/videos/{id}", videos.Get)
	handle("PUT /api/videos/{id}", videos.Update)
	handle("DELETE /api/videos/{id}", videos.Delete)

	feedback := NewFeedbackHandler(st, logger)
	handle("GET /api/videos/{id}/feedback", feedback.ListByVideo)
	handle("POST /api/videos/{id}/feedback", feedback.Create)
	handle("DELETE /api/feedback/{id}", feedback.Delete)
}
