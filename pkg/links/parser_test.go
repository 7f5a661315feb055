package links

import (
	"testing"

	"songfetch/internal/core"
)

func TestExtractURL(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "plain watch link",
			text:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantOK: true,
		},
		{
			name:   "link embedded in text",
			text:   "check this out https://youtu.be/dQw4w9WgXcQ so good",
			want:   "https://youtu.be/dQw4w9WgXcQ",
			wantOK: true,
		},
		{
			name:   "trailing punctuation stripped",
			text:   "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC!",
			want:   "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantOK: true,
		},
		{
			name:   "tracking params removed",
			text:   "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123",
			want:   "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantOK: true,
		},
		{
			name:   "no url",
			text:   "never gonna give you up",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.ExtractURL(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractURL(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractURL(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRecognize(t *testing.T) {
	p := NewParser()

	tests := []struct {
		url      string
		platform core.Platform
		ok       bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", core.PlatformYouTube, true},
		{"https://youtu.be/dQw4w9WgXcQ", core.PlatformYouTube, true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", core.PlatformYouTube, true},
		{"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", core.PlatformSpotify, true},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"not a url at all", "", false},
		{"https://youtube.com.evil.example/watch?v=x", "", false},
	}

	for _, tt := range tests {
		platform, ok := p.Recognize(tt.url)
		if ok != tt.ok || platform != tt.platform {
			t.Errorf("Recognize(%q) = (%q, %v), want (%q, %v)", tt.url, platform, ok, tt.platform, tt.ok)
		}
	}
}

func TestExtractTrackID(t *testing.T) {
	p := NewParser()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"https://www.youtube.com/playlist?list=PLx", "", true},
		{"https://example.com/track/123", "", true},
	}

	for _, tt := range tests {
		got, err := p.ExtractTrackID(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractTrackID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractTrackID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	p := NewParser()

	tests := []struct {
		in   string
		want string
	}{
		{"  rick astley   never gonna ", "rick astley never gonna"},
		{"ﬁre", "fire"}, // NFKC ligature fold
		{"one\ttwo\nthree", "one two three"},
	}

	for _, tt := range tests {
		if got := p.NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
