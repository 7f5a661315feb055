// Package store holds the transient artifact staging area, the resolved
// track cache and the delivery history log.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"songfetch/internal/core"
)

// trackIDSanitizer strips path-hostile characters from platform IDs before
// they become file names.
var trackIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Artifacts is a single flat directory of staged audio and thumbnail files.
// Paths are deterministic per track, so a re-request overwrites instead of
// accumulating.
type Artifacts struct {
	dir        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewArtifacts(dir string, logger *zap.Logger) *Artifacts {
	return &Artifacts{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Named("artifacts"),
	}
}

// Reset empties the staging directory, creating it if missing. Called once
// at startup so files orphaned by a crash do not survive a restart.
func (a *Artifacts) Reset() error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("failed to read staging dir: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(a.dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		a.logger.Info("Removed orphaned artifact", zap.String("path", path))
	}

	return nil
}

// Stage derives the deterministic staging path for one track artifact.
func (a *Artifacts) Stage(trackID string, kind core.ArtifactKind) string {
	name := trackIDSanitizer.ReplaceAllString(trackID, "_")
	if name == "" {
		name = "track"
	}

	switch kind {
	case core.ArtifactThumbnail:
		return filepath.Join(a.dir, name+".jpg")
	case core.ArtifactAudio:
	}
	return filepath.Join(a.dir, name+".mp3")
}

// StageFromURL downloads url into path.
func (a *Artifacts) StageFromURL(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &core.UpstreamError{Service: "artifact-fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &core.UpstreamError{Service: "artifact-fetch", StatusCode: resp.StatusCode}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Release deletes a staged file. Missing files and empty paths are no-ops,
// so terminal job handling can release unconditionally.
func (a *Artifacts) Release(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release %s: %w", path, err)
	}
	return nil
}
