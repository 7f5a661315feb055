// Package odesli queries the song.link/Odesli aggregator for cross-platform
// song records.
package odesli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

const (
	serviceName = "odesli"
	userAgent   = "songfetch/1.0"
)

// Client talks to the Odesli links API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an aggregator client for the given API base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.Named("odesli"),
	}
}

// linksResponse mirrors the relevant subset of the Odesli API response.
type linksResponse struct {
	EntityUniqueID     string                   `json:"entityUniqueId"`
	PageURL            string                   `json:"pageUrl"`
	EntitiesByUniqueID map[string]linksEntity   `json:"entitiesByUniqueId"`
	LinksByPlatform    map[string]platformEntry `json:"linksByPlatform"`
}

type linksEntity struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ArtistName   string `json:"artistName"`
	ThumbnailURL string `json:"thumbnailUrl"`
	APIProvider  string `json:"apiProvider"`
}

type platformEntry struct {
	EntityUniqueID string `json:"entityUniqueId"`
	URL            string `json:"url"`
}

// Lookup resolves one music link into equivalent records across platforms.
// A 4xx response means the aggregator does not know the song.
func (c *Client) Lookup(ctx context.Context, songURL string) (*core.AggregatorResult, error) {
	reqURL := fmt.Sprintf("%s?url=%s", c.baseURL, url.QueryEscape(songURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		c.logger.Debug("aggregator has no record for link",
			zap.String("url", songURL),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("aggregator lookup for %q: %w", songURL, core.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.UpstreamError{Service: serviceName, Err: err}
	}

	var parsed linksResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse aggregator response: %w", err)
	}

	return c.convert(&parsed), nil
}

// convert maps the wire response to the domain result, keeping only the
// platforms the pipeline understands.
func (c *Client) convert(parsed *linksResponse) *core.AggregatorResult {
	result := &core.AggregatorResult{
		PageURL: parsed.PageURL,
		Records: make(map[core.Platform]core.PlatformRecord),
	}

	for name, entry := range parsed.LinksByPlatform {
		var platform core.Platform
		switch name {
		case "youtube", "youtubeMusic":
			platform = core.PlatformYouTube
		case "spotify":
			platform = core.PlatformSpotify
		default:
			continue
		}

		// Prefer the plain platform over its music variant when both exist.
		if _, exists := result.Records[platform]; exists && name == "youtubeMusic" {
			continue
		}

		record := core.PlatformRecord{URL: entry.URL}
		if entity, ok := parsed.EntitiesByUniqueID[entry.EntityUniqueID]; ok {
			record.EntityID = entity.ID
			record.Title = entity.Title
			record.Artist = entity.ArtistName
			record.ThumbnailURL = entity.ThumbnailURL
		}
		result.Records[platform] = record
	}

	return result
}
