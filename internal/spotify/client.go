// Package spotify provides Spotify Web API integration for track metadata lookup.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"songfetch/internal/core"
)

// Client wraps the Spotify Web API behind the client-credentials flow.
// Metadata lookup needs no user scope, so no interactive OAuth dance.
type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger.Named("spotify"),
	}
}

// Authenticate obtains an app token and builds the API client.
func (c *Client) Authenticate(ctx context.Context) error {
	creds := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain Spotify token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	c.client = spotify.New(httpClient)

	c.logger.Info("Authenticated with Spotify")
	return nil
}

// GetTrack fetches display metadata for one Spotify track ID.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("spotify client not authenticated")
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, &core.UpstreamError{Service: "spotify", Err: err}
	}

	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	result := &core.Track{
		ID:       string(track.ID),
		Title:    track.Name,
		Artist:   strings.Join(artists, ", "),
		Duration: time.Duration(track.Duration) * time.Millisecond,
	}
	if len(track.Album.Images) > 0 {
		result.ThumbnailURL = track.Album.Images[0].URL
	}

	c.logger.Debug("Fetched track metadata",
		zap.String("track_id", trackID),
		zap.String("title", result.Title),
		zap.String("artist", result.Artist))

	return result, nil
}
