package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/pkg/metrics"
)

type fakeRetriever struct {
	docs    []schema.Document
	err     error
	gotURL  string
	verbose bool
}

func (f *fakeRetriever) Retrieve(_ context.Context, videoURL string, verbose bool) ([]schema.Document, error) {
	f.gotURL = videoURL
	f.verbose = verbose
	return f.docs, f.err
}

type fakeExtractor struct {
	concepts      []models.ConceptMap
	err           error
	called        bool
	gotDocs       []schema.Document
	gotSampleSize int
}

func (f *fakeExtractor) Extract(_ context.Context, docs []schema.Document, sampleSize int, _ bool) ([]models.ConceptMap, error) {
	f.called = true
	f.gotDocs = docs
	f.gotSampleSize = sampleSize
	return f.concepts, f.err
}

func newTestServer(r *fakeRetriever, x *fakeExtractor) *Server {
	reg := prometheus.NewRegistry()
	return NewServer(Config{SampleSize: 3, Verbose: true, Gatherer: reg}, r, x, metrics.New(reg), nil)
}

func postAnalyze(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze_video", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeVideo(t *testing.T) {
	docs := []schema.Document{{PageContent: "a"}, {PageContent: "b"}}
	r := &fakeRetriever{docs: docs}
	x := &fakeExtractor{concepts: []models.ConceptMap{
		{"graph": "vertices and edges"},
		{"tree": "connected acyclic graph", "leaf": "vertex of degree one"},
	}}
	s := newTestServer(r, x)

	rec := postAnalyze(s, `{"youtube_link": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key_concepts": [
		{"graph": "vertices and edges"},
		{"tree": "connected acyclic graph", "leaf": "vertex of degree one"}
	]}`, rec.Body.String())
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.gotURL)
	assert.True(t, r.verbose)
	assert.Equal(t, docs, x.gotDocs)
	assert.Equal(t, 3, x.gotSampleSize)

	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestAnalyzeVideoEmptyResult(t *testing.T) {
	s := newTestServer(&fakeRetriever{}, &fakeExtractor{})

	rec := postAnalyze(s, `{"youtube_link": "https://youtu.be/dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key_concepts": []}`, rec.Body.String())
}

func TestAnalyzeVideoInvalidLink(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{}`},
		{name: "empty", body: `{"youtube_link": ""}`},
		{name: "not a url", body: `{"youtube_link": "not a url"}`},
		{name: "relative", body: `{"youtube_link": "/watch?v=dQw4w9WgXcQ"}`},
		{name: "wrong scheme", body: `{"youtube_link": "ftp://youtube.com/video"}`},
		{name: "no host", body: `{"youtube_link": "https://"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRetriever{}
			x := &fakeExtractor{}
			rec := postAnalyze(newTestServer(r, x), tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Empty(t, r.gotURL)
			assert.False(t, x.called)
		})
	}
}

func TestAnalyzeVideoMalformedBody(t *testing.T) {
	rec := postAnalyze(newTestServer(&fakeRetriever{}, &fakeExtractor{}), `{"youtube_link": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeVideoPipelineErrors(t *testing.T) {
	tests := []struct {
		name      string
		retriever *fakeRetriever
		extractor *fakeExtractor
	}{
		{
			name:      "transcript unavailable",
			retriever: &fakeRetriever{err: errors.New("captions unavailable")},
			extractor: &fakeExtractor{},
		},
		{
			name:      "extraction failed",
			retriever: &fakeRetriever{docs: []schema.Document{{PageContent: "a"}}},
			extractor: &fakeExtractor{err: errors.New("malformed model output")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAnalyze(newTestServer(tt.retriever, tt.extractor), `{"youtube_link": "https://youtu.be/dQw4w9WgXcQ"}`)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"message": "Internal Server Error"}`, rec.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeRetriever{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodOptions, "/analyze_video", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(&fakeRetriever{}, &fakeExtractor{})
	postAnalyze(s, `{"youtube_link": "https://youtu.be/dQw4w9WgXcQ"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `conceptube_analyze_requests_total{outcome="ok"} 1`)
}
