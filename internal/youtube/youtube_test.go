package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

const searchResponse = `{
	"contents": {
		"twoColumnSearchResultsRenderer": {
			"primaryContents": {
				"sectionListRenderer": {
					"contents": [
						{
							"itemSectionRenderer": {
								"contents": [
									{"adSlotRenderer": {}},
									{
										"videoRenderer": {
											"videoId": "dQw4w9WgXcQ",
											"title": {"runs": [{"text": "Rick Astley - Never Gonna Give You Up"}]},
											"ownerText": {"runs": [{"text": "Rick Astley"}]},
											"lengthText": {"simpleText": "3:33"},
											"thumbnail": {"thumbnails": [
												{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"},
												{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}
											]}
										}
									},
									{
										"videoRenderer": {
											"videoId": "abc123def45",
											"title": {"runs": [{"text": "Never Gonna Give You Up (Cover)"}]},
											"ownerText": {"runs": [{"text": "Someone Else"}]}
										}
									}
								]
							}
						}
					]
				}
			}
		}
	}
}`

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Query != "never gonna give you up" {
			t.Errorf("query = %q", req.Query)
		}
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.searchURL = server.URL

	candidates, err := client.Search(context.Background(), "never gonna give you up", 25)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.WatchLink != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("WatchLink = %q", first.WatchLink)
	}
	if first.Title != "Rick Astley - Never Gonna Give You Up" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.ChannelName != "Rick Astley" {
		t.Errorf("ChannelName = %q", first.ChannelName)
	}
	if first.DurationText != "3:33" {
		t.Errorf("DurationText = %q", first.DurationText)
	}
	if first.Thumbnail != "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("Thumbnail = %q", first.Thumbnail)
	}
}

func TestSearchLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.searchURL = server.URL

	candidates, err := client.Search(context.Background(), "anything", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(candidates))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(zap.NewNop())
	client.searchURL = "http://127.0.0.1:0" // would fail if contacted

	candidates, err := client.Search(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("empty query should not error: %v", err)
	}
	if candidates != nil {
		t.Errorf("empty query should return no candidates, got %v", candidates)
	}
}

func TestMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Rick Astley - Never Gonna Give You Up (Official Music Video)", "author_name": "RickAstleyVEVO"}`))
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.oembedURL = server.URL

	track, err := client.Metadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}

	if track.ID != "dQw4w9WgXcQ" {
		t.Errorf("ID = %q", track.ID)
	}
	if track.Title != "Rick Astley - Never Gonna Give You Up" {
		t.Errorf("Title = %q", track.Title)
	}
	if track.Artist != "Rick Astley" {
		t.Errorf("Artist = %q", track.Artist)
	}
	if !track.LowConfidence {
		t.Error("oEmbed metadata should be flagged low confidence")
	}
	if _, ok := track.DownloadURL(); !ok {
		t.Error("track should carry a downloadable link")
	}
}

func TestMetadataUnavailableVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.oembedURL = server.URL

	_, err := client.Metadata(context.Background(), "https://www.youtube.com/watch?v=gone")
	if !core.IsNotFound(err) {
		t.Errorf("expected not-found classification, got %v", err)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Song (Official Video)", "Song"},
		{"Song [Official Music Video]", "Song"},
		{"Song (Lyrics)", "Song"},
		{"Song (4K)", "Song"},
		{"Plain Song", "Plain Song"},
	}

	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractArtist(t *testing.T) {
	tests := []struct {
		title  string
		author string
		want   string
	}{
		{"Never Gonna Give You Up", "RickAstleyVEVO", "Rick Astley"},
		{"Never Gonna Give You Up", "Rick Astley - Topic", "Rick Astley"},
		{"Daft Punk - One More Time", "randomchannel", "Daft Punk"},
		{"Untitled", "somechannel", "somechannel"},
	}

	for _, tt := range tests {
		if got := extractArtist(tt.title, tt.author); got != tt.want {
			t.Errorf("extractArtist(%q, %q) = %q, want %q", tt.title, tt.author, got, tt.want)
		}
	}
}
