// Package client talks to a qinter pack registry over its JSON API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the registry does not know the pack.
var ErrNotFound = errors.New("pack not found in registry")

// PackSummary is one registry listing entry.
type PackSummary struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags,omitempty"`
	Downloads   int      `json:"downloads"`
}

// PackInfo is the registry's detailed view of a pack.
type PackInfo struct {
	PackSummary
	License    string `json:"license"`
	Homepage   string `json:"homepage,omitempty"`
	Repository string `json:"repository,omitempty"`
	UploadedAt string `json:"uploaded_at"`
}

type listResponse struct {
	Packages []PackSummary `json:"packages"`
	Total    int           `json:"total"`
}

type searchResponse struct {
	Results []PackSummary `json:"results"`
	Query   string        `json:"query"`
}

type downloadResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Content string `json:"content"`
}

// Client is a registry API client with bounded retry on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

const maxRetries = 3

// New returns a client for the registry at baseURL. A nil logger is replaced
// with a no-op logger.
func New(baseURL, version string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "qinter/" + version,
		logger:     logger.Named("registry-client"),
	}
}

// List fetches the registry's pack listing, most downloaded first.
func (c *Client) List(ctx context.Context) ([]PackSummary, error) {
	var resp listResponse
	err := c.getJSON(ctx, "/api/v1/packages?limit=100&sort=downloads", &resp)
	if err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

// Search queries the registry for packs matching query.
func (c *Client) Search(ctx context.Context, query string) ([]PackSummary, error) {
	var resp searchResponse
	err := c.getJSON(ctx, "/api/v1/packages/search?q="+url.QueryEscape(query)+"&limit=50", &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Info fetches detailed information for one pack.
func (c *Client) Info(ctx context.Context, name string) (*PackInfo, error) {
	var info PackInfo
	if err := c.getJSON(ctx, "/api/v1/packages/"+url.PathEscape(name), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Download fetches the YAML content of a pack. Version "latest" (or empty)
// selects the most recent upload.
func (c *Client) Download(ctx context.Context, name, version string) (string, error) {
	if version == "" {
		version = "latest"
	}
	var resp downloadResponse
	path := "/api/v1/packages/" + url.PathEscape(name) + "/download?version=" + url.QueryEscape(version)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", fmt.Errorf("registry returned empty content for %s@%s", name, version)
	}
	return resp.Content, nil
}

// getJSON performs a GET with retry on transport failures, 429 and 5xx,
// backing off exponentially between attempts.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
			c.logger.Debug("retrying registry request",
				zap.String("path", path), zap.Int("attempt", attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("registry request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read registry response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("registry returned status %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("registry returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode registry response: %w", err)
		}
		return nil
	}
	return lastErr
}
