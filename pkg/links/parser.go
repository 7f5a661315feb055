// Package links provides link recognition and platform classification for
// user-supplied chat messages.
package links

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"songfetch/internal/core"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex        = regexp.MustCompile(`(?i)\bhttps?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// Per-platform host allow-list. Unrecognized hosts are rejected before
	// any network call.
	youtubeDomains = map[string]bool{
		"youtube.com":       true,
		"www.youtube.com":   true,
		"m.youtube.com":     true,
		"music.youtube.com": true,
		"youtu.be":          true,
	}

	spotifyDomains = map[string]bool{
		"open.spotify.com": true,
		"spotify.com":      true,
	}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ExtractURL returns the first URL found in the message text.
func (p *Parser) ExtractURL(text string) (string, bool) {
	match := urlRegex.FindString(text)
	if match == "" {
		return "", false
	}

	cleaned := p.cleanURL(match)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// Recognize classifies a URL by platform host. The second return value is
// false for link shapes the pipeline does not support.
func (p *Parser) Recognize(rawURL string) (core.Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	hostname := strings.ToLower(u.Hostname())
	switch {
	case youtubeDomains[hostname]:
		return core.PlatformYouTube, true
	case spotifyDomains[hostname]:
		return core.PlatformSpotify, true
	}
	return "", false
}

// ExtractTrackID pulls the platform-assigned track identifier out of a
// recognized URL: the video ID for the video platform, the track ID for the
// streaming service.
func (p *Parser) ExtractTrackID(rawURL string) (string, error) {
	platform, ok := p.Recognize(rawURL)
	if !ok {
		return "", core.ErrUnsupportedLink
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	switch platform {
	case core.PlatformYouTube:
		hostname := strings.ToLower(u.Hostname())
		if hostname == "youtu.be" {
			id := strings.Trim(u.Path, "/")
			if id == "" {
				return "", errors.New("no video ID in short link")
			}
			return id, nil
		}
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		return "", errors.New("no video ID in URL")
	case core.PlatformSpotify:
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, part := range parts {
			if part == "track" && i+1 < len(parts) {
				return parts[i+1], nil
			}
		}
		return "", errors.New("no track ID in URL")
	}
	return "", core.ErrUnsupportedLink
}

// NormalizeQuery prepares free text for the search service.
func (p *Parser) NormalizeQuery(text string) string {
	text = norm.NFKC.String(strings.TrimSpace(text))
	return whitespaceRegex.ReplaceAllString(text, " ")
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;)")

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	// Strip tracking parameters shared links tend to carry.
	q := u.Query()
	for _, param := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "si", "feature"} {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
