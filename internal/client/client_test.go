package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test", nil)
}

func TestList(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages", r.URL.Path)
		assert.Equal(t, "downloads", r.URL.Query().Get("sort"))
		assert.Contains(t, r.Header.Get("User-Agent"), "qinter/")
		json.NewEncoder(w).Encode(listResponse{
			Packages: []PackSummary{
				{Name: "python-web", Version: "2.1.0", Downloads: 40},
				{Name: "python-data", Version: "1.0.0", Downloads: 12},
			},
			Total: 2,
		})
	})

	packs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "python-web", packs[0].Name)
}

func TestSearch(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages/search", r.URL.Path)
		assert.Equal(t, "pandas errors", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(searchResponse{
			Results: []PackSummary{{Name: "python-data", Version: "1.0.0"}},
			Query:   "pandas errors",
		})
	})

	results, err := c.Search(context.Background(), "pandas errors")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "python-data", results[0].Name)
}

func TestInfo(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages/python-web", r.URL.Path)
		json.NewEncoder(w).Encode(PackInfo{
			PackSummary: PackSummary{Name: "python-web", Version: "2.1.0", Author: "ana"},
			License:     "MIT",
		})
	})

	info, err := c.Info(context.Background(), "python-web")
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", info.Version)
	assert.Equal(t, "MIT", info.License)
}

func TestInfoNotFound(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such pack", http.StatusNotFound)
	})

	_, err := c.Info(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownload(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages/python-web/download", r.URL.Path)
		assert.Equal(t, "latest", r.URL.Query().Get("version"))
		json.NewEncoder(w).Encode(downloadResponse{
			Name:    "python-web",
			Version: "2.1.0",
			Content: "metadata: ...",
		})
	})

	content, err := c.Download(context.Background(), "python-web", "")
	require.NoError(t, err)
	assert.Equal(t, "metadata: ...", content)
}

func TestDownloadEmptyContent(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(downloadResponse{Name: "python-web", Version: "2.1.0"})
	})

	_, err := c.Download(context.Background(), "python-web", "2.1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporary", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(listResponse{Packages: []PackSummary{{Name: "p"}}})
	})

	packs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	c := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "always down", http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
