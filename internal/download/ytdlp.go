// Package download produces transcoded MP3 files from platform video URLs
// via yt-dlp.
package download

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"songfetch/internal/core"
)

// Downloader runs yt-dlp with audio extraction into a fixed destination path.
type Downloader struct {
	config *core.DownloadConfig
	logger *zap.Logger
}

func NewDownloader(config *core.DownloadConfig, logger *zap.Logger) *Downloader {
	return &Downloader{
		config: config,
		logger: logger.Named("download"),
	}
}

// Install makes sure a yt-dlp binary is available, downloading one if the
// host has none.
func (d *Downloader) Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// Download fetches sourceURL and transcodes it to MP3 at destPath.
// destPath must carry the final .mp3 extension; yt-dlp writes the
// intermediate container next to it and replaces it after transcoding.
func (d *Downloader) Download(ctx context.Context, sourceURL, destPath string) error {
	outputTemplate := strings.TrimSuffix(destPath, ".mp3") + ".%(ext)s"

	dl := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality(d.config.AudioQuality).
		NoPlaylist().
		ForceOverwrites().
		Output(outputTemplate)

	if d.config.CookiesPath != "" {
		if _, err := os.Stat(d.config.CookiesPath); err == nil {
			dl = dl.Cookies(d.config.CookiesPath)
		}
	}

	d.logger.Info("Starting download",
		zap.String("url", sourceURL),
		zap.String("dest", destPath))

	result, err := dl.Run(ctx, sourceURL)
	if err != nil {
		return classifyRunError(sourceURL, result, err)
	}

	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("yt-dlp finished but %s is missing: %w", destPath, err)
	}

	return nil
}

// classifyRunError maps yt-dlp stderr output to the pipeline's error
// taxonomy. Age gates and removed videos have stable marker strings.
func classifyRunError(sourceURL string, result *ytdlp.Result, err error) error {
	output := err.Error()
	if result != nil {
		output += "\n" + result.Stderr
	}

	switch {
	case strings.Contains(output, "Sign in to confirm your age"),
		strings.Contains(output, "age-restricted"),
		strings.Contains(output, "Age-restricted"):
		return &core.AgeRestrictedError{URL: sourceURL}
	case strings.Contains(output, "Video unavailable"),
		strings.Contains(output, "This video is not available"),
		strings.Contains(output, "has been removed"):
		return fmt.Errorf("source video gone: %w", core.ErrNotFound)
	case strings.Contains(output, "HTTP Error"):
		return &core.UpstreamError{Service: "yt-dlp", Err: err}
	default:
		return fmt.Errorf("yt-dlp failed: %w", err)
	}
}
