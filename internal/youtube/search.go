// Package youtube provides video search and per-video metadata lookup
// against YouTube's public endpoints, without an API key.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

const (
	serviceName = "youtube"

	searchClientName    = "WEB"
	searchClientVersion = "2.20240101.00.00"
)

// Client talks to the Innertube search endpoint and the oEmbed API.
type Client struct {
	searchURL  string
	oembedURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		searchURL: "https://www.youtube.com/youtubei/v1/search",
		oembedURL: "https://www.youtube.com/oembed",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.Named("youtube"),
	}
}

type searchRequest struct {
	Context searchContext `json:"context"`
	Query   string        `json:"query"`
}

type searchContext struct {
	Client searchClient `json:"client"`
}

type searchClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl"`
	GL            string `json:"gl"`
}

// Search runs a single-page text search and returns at most limit candidates.
// An empty query short-circuits to no results without a network call.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.SearchCandidate, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}

	payload, err := json.Marshal(searchRequest{
		Context: searchContext{
			Client: searchClient{
				ClientName:    searchClientName,
				ClientVersion: searchClientVersion,
				HL:            "en",
				GL:            "US",
			},
		},
		Query: query,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode}
	}

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	candidates := extractCandidates(parsed, limit)
	c.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("results", len(candidates)))

	return candidates, nil
}

// extractCandidates walks the Innertube response tree and collects video
// renderers. The tree is deeply nested and loosely typed, so navigation is
// defensive at every level.
func extractCandidates(parsed map[string]interface{}, limit int) []core.SearchCandidate {
	var candidates []core.SearchCandidate

	sections := dig(parsed,
		"contents", "twoColumnSearchResultsRenderer", "primaryContents",
		"sectionListRenderer", "contents")
	for _, section := range asSlice(sections) {
		items := dig(asMap(section), "itemSectionRenderer", "contents")
		for _, item := range asSlice(items) {
			renderer := asMap(dig(asMap(item), "videoRenderer"))
			if renderer == nil {
				continue
			}
			candidate, ok := parseVideoRenderer(renderer)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate)
			if len(candidates) >= limit {
				return candidates
			}
		}
	}

	return candidates
}

func parseVideoRenderer(renderer map[string]interface{}) (core.SearchCandidate, bool) {
	videoID, _ := dig(renderer, "videoId").(string)
	if videoID == "" {
		return core.SearchCandidate{}, false
	}

	candidate := core.SearchCandidate{
		WatchLink: fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
		Title:     firstRunText(dig(renderer, "title", "runs")),
	}
	if candidate.Title == "" {
		return core.SearchCandidate{}, false
	}

	candidate.ChannelName = firstRunText(dig(renderer, "ownerText", "runs"))
	candidate.DurationText, _ = dig(renderer, "lengthText", "simpleText").(string)

	thumbs := asSlice(dig(renderer, "thumbnail", "thumbnails"))
	if len(thumbs) > 0 {
		candidate.Thumbnail, _ = dig(asMap(thumbs[len(thumbs)-1]), "url").(string)
	}

	return candidate, true
}

func firstRunText(runs interface{}) string {
	slice := asSlice(runs)
	if len(slice) == 0 {
		return ""
	}
	text, _ := dig(asMap(slice[0]), "text").(string)
	return text
}

func dig(m map[string]interface{}, keys ...string) interface{} {
	var current interface{} = m
	for _, key := range keys {
		node := asMap(current)
		if node == nil {
			return nil
		}
		current = node[key]
	}
	return current
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
