package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

// oembedResponse represents the response from YouTube's oEmbed API.
type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

var titleNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[([](official\s+)?(music\s+)?video[)\]]`),
	regexp.MustCompile(`(?i)[([]official\s+audio[)\]]`),
	regexp.MustCompile(`(?i)[([]lyric(s| video)?[)\]]`),
	regexp.MustCompile(`(?i)[([](HD|4K)[)\]]`),
}

var camelCaseRegex = regexp.MustCompile(`([a-z])([A-Z])`)

// Metadata builds best-effort track metadata for one watch URL from the
// oEmbed API. Title and artist are heuristic, so the track is flagged as
// low confidence.
func (c *Client) Metadata(ctx context.Context, watchURL string) (*core.Track, error) {
	videoID, err := extractVideoID(watchURL)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, core.ErrUnsupportedLink)
	}

	canonical := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	reqURL := fmt.Sprintf("%s?url=%s&format=json", c.oembedURL, url.QueryEscape(canonical))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	// oEmbed answers 400/404 for deleted or private videos.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("video %s unavailable: %w", videoID, core.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode}
	}

	var parsed oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	title := cleanTitle(parsed.Title)
	artist := extractArtist(parsed.Title, parsed.AuthorName)

	c.logger.Debug("Resolved video metadata",
		zap.String("video_id", videoID),
		zap.String("title", title),
		zap.String("artist", artist))

	return &core.Track{
		ID:           videoID,
		Title:        title,
		Artist:       artist,
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
		Links: []core.ProviderLink{
			{Platform: core.PlatformYouTube, PlayableURL: canonical},
		},
		LowConfidence: true,
	}, nil
}

// extractVideoID extracts the YouTube video ID from various URL formats.
func extractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "youtu.be" {
		path := strings.Trim(u.Path, "/")
		if path == "" {
			return "", fmt.Errorf("no video ID in youtu.be URL")
		}
		return path, nil
	}

	videoID := u.Query().Get("v")
	if videoID == "" {
		return "", fmt.Errorf("no video ID in YouTube URL")
	}
	return videoID, nil
}

// cleanTitle removes common video-release noise from titles.
func cleanTitle(title string) string {
	cleaned := title
	for _, re := range titleNoisePatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// extractArtist guesses the artist from the channel name or the title.
func extractArtist(title, authorName string) string {
	// VEVO channels embed the artist in camel case (RickAstleyVEVO).
	if strings.HasSuffix(authorName, "VEVO") {
		artist := strings.TrimSuffix(authorName, "VEVO")
		return camelCaseRegex.ReplaceAllString(artist, "$1 $2")
	}

	// Auto-generated artist channels.
	if strings.HasSuffix(authorName, " - Topic") {
		return strings.TrimSuffix(authorName, " - Topic")
	}

	// "Artist - Song Title" is the most common upload format.
	if strings.Contains(title, " - ") {
		parts := strings.SplitN(title, " - ", 2)
		return strings.TrimSpace(parts[0])
	}

	return authorName
}
