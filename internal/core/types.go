package core

import (
	"context"
	"time"
)

// Platform identifies a music provider.
type Platform string

const (
	// PlatformYouTube is the video platform; the only platform audio is downloaded from.
	PlatformYouTube Platform = "youtube"
	// PlatformSpotify is the streaming service; used for display metadata only.
	PlatformSpotify Platform = "spotify"
)

// ProviderLink is one playable source for a track on one platform.
type ProviderLink struct {
	Platform    Platform
	PlayableURL string
}

// Track is a resolved, provider-independent song identity.
// Immutable once constructed.
type Track struct {
	ID            string
	Title         string
	Artist        string
	Duration      time.Duration
	ThumbnailURL  string
	CanonicalLink string // cross-provider aggregator page, may be empty
	Links         []ProviderLink
	LowConfidence bool // set when display metadata came from a fallback path
}

// DownloadURL returns the video-platform source URL for this track.
// Audio is never downloaded from any other platform.
func (t *Track) DownloadURL() (string, bool) {
	for _, l := range t.Links {
		if l.Platform == PlatformYouTube && l.PlayableURL != "" {
			return l.PlayableURL, true
		}
	}
	return "", false
}

// SearchCandidate is a lightweight search result awaiting user selection.
// It is converted to a full Track only once selected.
type SearchCandidate struct {
	Title        string
	ChannelName  string
	WatchLink    string
	Thumbnail    string
	DurationText string
}

// JobState tracks a job through the resolution and delivery pipeline.
type JobState int

const (
	// JobCreated is the initial state of every job.
	JobCreated JobState = iota
	// JobResolving indicates metadata resolution is in progress.
	JobResolving
	// JobAwaitingSelection indicates the job is suspended until the user picks a candidate.
	JobAwaitingSelection
	// JobDownloading indicates the audio source is being downloaded and transcoded.
	JobDownloading
	// JobStagingThumbnail indicates the thumbnail is being fetched into the artifact store.
	JobStagingThumbnail
	// JobUploading indicates the audio is being pushed to the requesting surface.
	JobUploading
	// JobDelivered is the successful terminal state.
	JobDelivered
	// JobNotFound indicates no matching song or no downloadable platform link.
	JobNotFound
	// JobAgeRestricted indicates the source platform reported an age gate.
	JobAgeRestricted
	// JobHTTPFailure indicates an upstream 5xx or transport error.
	JobHTTPFailure
	// JobUnknownFailure indicates an unexpected error.
	JobUnknownFailure
	// JobCancelled indicates the selection prompt expired unanswered.
	JobCancelled
)

// Terminal reports whether the state ends the job's lifecycle.
func (s JobState) Terminal() bool {
	switch s {
	case JobDelivered, JobNotFound, JobAgeRestricted, JobHTTPFailure, JobUnknownFailure, JobCancelled:
		return true
	case JobCreated, JobResolving, JobAwaitingSelection, JobDownloading, JobStagingThumbnail, JobUploading:
		return false
	}
	return false
}

func (s JobState) String() string {
	switch s {
	case JobCreated:
		return "created"
	case JobResolving:
		return "resolving"
	case JobAwaitingSelection:
		return "awaiting_selection"
	case JobDownloading:
		return "downloading"
	case JobStagingThumbnail:
		return "staging_thumbnail"
	case JobUploading:
		return "uploading"
	case JobDelivered:
		return "delivered"
	case JobNotFound:
		return "not_found"
	case JobAgeRestricted:
		return "age_restricted"
	case JobHTTPFailure:
		return "http_failure"
	case JobUnknownFailure:
		return "unknown_failure"
	case JobCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Origin is the surface a job delivers to.
type Origin int

const (
	// OriginChat delivers via a chat reply that is edited with progress and replaced by the audio.
	OriginChat Origin = iota
	// OriginInline delivers by editing an inline-query result message.
	OriginInline
)

// Job is one user request's lifecycle object. A job owns its staged file
// paths exclusively; they are released on every terminal state.
type Job struct {
	RequestID           string
	Origin              Origin
	ChatID              string
	MessageID           string // progress message edited through the pipeline
	InlineMessageID     string // set only for inline-origin jobs
	RequestedBy         string
	State               JobState
	Track               *Track
	Candidates          []SearchCandidate // present only while awaiting selection
	StagedAudioPath     string
	StagedThumbnailPath string
	Err                 error // set only in failure states
	StartedAt           time.Time
}

// ArtifactKind selects the staged artifact type for a track.
type ArtifactKind int

const (
	// ArtifactAudio is the transcoded audio file.
	ArtifactAudio ArtifactKind = iota
	// ArtifactThumbnail is the cover image file.
	ArtifactThumbnail
)

// PlatformRecord is one platform's song record inside an aggregator result.
type PlatformRecord struct {
	EntityID     string
	Title        string
	Artist       string
	ThumbnailURL string
	URL          string
}

// AggregatorResult is a multi-platform metadata bundle for one link.
type AggregatorResult struct {
	PageURL string
	Records map[Platform]PlatformRecord
}

// Aggregator maps one music link to equivalent records across platforms.
type Aggregator interface {
	Lookup(ctx context.Context, url string) (*AggregatorResult, error)
}

// Resolver turns a user-supplied URL into a full Track.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Track, error)
}

// Searcher runs a single-page text search against the video platform.
// An empty result is a normal outcome, not an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchCandidate, error)
}

// VideoLookup fetches best-effort track metadata for a single watch URL.
type VideoLookup interface {
	Metadata(ctx context.Context, watchURL string) (*Track, error)
}

// MetadataClient fetches rich display metadata from the streaming service.
type MetadataClient interface {
	GetTrack(ctx context.Context, trackID string) (*Track, error)
}

// LinkClassifier recognizes supported link shapes before any network call
// and normalizes free text for search.
type LinkClassifier interface {
	ExtractURL(text string) (string, bool)
	Recognize(rawURL string) (Platform, bool)
	ExtractTrackID(rawURL string) (string, error)
	NormalizeQuery(text string) string
}

// Downloader produces a transcoded audio file at destPath from a
// platform-specific source URL.
type Downloader interface {
	Download(ctx context.Context, sourceURL, destPath string) error
}

// ArtifactStore is the transient staging area for downloaded files.
type ArtifactStore interface {
	// Stage derives the deterministic path for a track's artifact.
	// Repeated calls for the same track overwrite, never append.
	Stage(trackID string, kind ArtifactKind) string
	// StageFromURL downloads url into path.
	StageFromURL(ctx context.Context, url, path string) error
	// Release deletes the file; releasing a missing path is a no-op.
	Release(path string) error
}

// TrackCache caches resolved tracks by their source URL.
type TrackCache interface {
	Get(url string) (*Track, bool)
	Put(url string, track *Track)
}

// DeliveryRecord is one row of the delivery history log.
type DeliveryRecord struct {
	TrackID     string
	Title       string
	Artist      string
	RequestedBy string
	Outcome     string
	At          time.Time
}

// HistoryStore persists terminal job outcomes.
type HistoryStore interface {
	Record(ctx context.Context, rec DeliveryRecord) error
	Recent(ctx context.Context, n int) ([]DeliveryRecord, error)
}

// Metrics receives pipeline instrumentation events.
type Metrics interface {
	RecordJob(outcome string)
	RecordDownload(status string)
	RecordSearch()
	ObserveStep(step string, d time.Duration)
	SetActiveJobs(n int)
}
