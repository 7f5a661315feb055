package odesli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

const sampleResponse = `{
	"entityUniqueId": "SPOTIFY_SONG::4uLU6hMC",
	"pageUrl": "https://song.link/s/4uLU6hMC",
	"entitiesByUniqueId": {
		"SPOTIFY_SONG::4uLU6hMC": {
			"id": "4uLU6hMC",
			"title": "Never Gonna Give You Up",
			"artistName": "Rick Astley",
			"thumbnailUrl": "https://i.scdn.co/image/abc",
			"apiProvider": "spotify"
		},
		"YOUTUBE_VIDEO::dQw4w9WgXcQ": {
			"id": "dQw4w9WgXcQ",
			"title": "Rick Astley - Never Gonna Give You Up",
			"artistName": "RickAstleyVEVO",
			"thumbnailUrl": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
			"apiProvider": "youtube"
		}
	},
	"linksByPlatform": {
		"spotify": {
			"entityUniqueId": "SPOTIFY_SONG::4uLU6hMC",
			"url": "https://open.spotify.com/track/4uLU6hMC"
		},
		"youtube": {
			"entityUniqueId": "YOUTUBE_VIDEO::dQw4w9WgXcQ",
			"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
		},
		"tidal": {
			"entityUniqueId": "TIDAL_SONG::123",
			"url": "https://tidal.com/track/123"
		}
	}
}`

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://open.spotify.com/track/4uLU6hMC" {
			t.Errorf("unexpected url param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	result, err := client.Lookup(context.Background(), "https://open.spotify.com/track/4uLU6hMC")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.PageURL != "https://song.link/s/4uLU6hMC" {
		t.Errorf("PageURL = %q", result.PageURL)
	}

	yt, ok := result.Records[core.PlatformYouTube]
	if !ok {
		t.Fatal("missing youtube record")
	}
	if yt.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("youtube URL = %q", yt.URL)
	}
	if yt.EntityID != "dQw4w9WgXcQ" {
		t.Errorf("youtube EntityID = %q", yt.EntityID)
	}

	sp, ok := result.Records[core.PlatformSpotify]
	if !ok {
		t.Fatal("missing spotify record")
	}
	if sp.Title != "Never Gonna Give You Up" || sp.Artist != "Rick Astley" {
		t.Errorf("spotify record = %+v", sp)
	}

	// Unsupported platforms are dropped.
	if len(result.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(result.Records))
	}
}

func TestLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"statusCode":404}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.Lookup(context.Background(), "https://open.spotify.com/track/nope")
	if !core.IsNotFound(err) {
		t.Errorf("expected not-found classification, got %v", err)
	}
}

func TestLookupUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.Lookup(context.Background(), "https://open.spotify.com/track/any")
	if core.FailureState(err) != core.JobHTTPFailure {
		t.Errorf("expected http failure classification, got %v", err)
	}
}
