package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AggregatorResolver resolves links through the cross-platform aggregator,
// preferring streaming-service metadata for display and the video platform
// for audio. When the aggregator cannot help it falls back to a text search,
// and the result is flagged as low confidence.
type AggregatorResolver struct {
	aggregator Aggregator
	metadata   MetadataClient // may be nil when no credentials are configured
	classifier LinkClassifier
	searcher   Searcher
	video      VideoLookup
	cache      TrackCache
	logger     *zap.Logger
}

func NewAggregatorResolver(
	aggregator Aggregator,
	metadata MetadataClient,
	classifier LinkClassifier,
	searcher Searcher,
	video VideoLookup,
	cache TrackCache,
	logger *zap.Logger,
) *AggregatorResolver {
	return &AggregatorResolver{
		aggregator: aggregator,
		metadata:   metadata,
		classifier: classifier,
		searcher:   searcher,
		video:      video,
		cache:      cache,
		logger:     logger.Named("resolver"),
	}
}

// Resolve turns a user-supplied URL into a full Track.
func (r *AggregatorResolver) Resolve(ctx context.Context, url string) (*Track, error) {
	if track, ok := r.cache.Get(url); ok {
		r.logger.Debug("Resolved from cache", zap.String("url", url))
		return track, nil
	}

	if _, ok := r.classifier.Recognize(url); !ok {
		return nil, fmt.Errorf("unrecognized link %q: %w", url, ErrUnsupportedLink)
	}

	result, err := r.aggregator.Lookup(ctx, url)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		// The aggregator does not know this link at all. A plain video
		// link can still be resolved directly.
		track, fallbackErr := r.video.Metadata(ctx, url)
		if fallbackErr != nil {
			return nil, err
		}
		r.logger.Warn("Aggregator lookup failed, using direct video metadata",
			zap.String("url", url))
		r.cache.Put(url, track)
		return track, nil
	}

	track, err := r.buildTrack(ctx, url, result)
	if err != nil {
		return nil, err
	}

	r.cache.Put(url, track)
	return track, nil
}

func (r *AggregatorResolver) buildTrack(ctx context.Context, url string, result *AggregatorResult) (*Track, error) {
	ytRecord, hasVideo := result.Records[PlatformYouTube]
	spRecord, hasStream := result.Records[PlatformSpotify]

	if !hasVideo {
		// No downloadable source in the aggregator answer. Recover it by
		// searching for the streaming record's title.
		if !hasStream {
			return nil, fmt.Errorf("no usable platform records for %q: %w", url, ErrNotFound)
		}
		track, err := r.searchFallback(ctx, spRecord)
		if err != nil {
			return nil, err
		}
		track.CanonicalLink = result.PageURL
		return track, nil
	}

	track := &Track{
		ID:            ytRecord.EntityID,
		Title:         ytRecord.Title,
		Artist:        ytRecord.Artist,
		ThumbnailURL:  ytRecord.ThumbnailURL,
		CanonicalLink: result.PageURL,
		Links: []ProviderLink{
			{Platform: PlatformYouTube, PlayableURL: ytRecord.URL},
		},
	}

	if hasStream {
		// Streaming-service metadata is curated; prefer it for display.
		if spRecord.Title != "" {
			track.Title = spRecord.Title
		}
		if spRecord.Artist != "" {
			track.Artist = spRecord.Artist
		}
		if spRecord.ThumbnailURL != "" {
			track.ThumbnailURL = spRecord.ThumbnailURL
		}
		track.Links = append(track.Links, ProviderLink{
			Platform:    PlatformSpotify,
			PlayableURL: spRecord.URL,
		})
		r.enrich(ctx, track, spRecord)
	} else {
		track.LowConfidence = true
		r.logger.Warn("No streaming record, display metadata is from the video platform",
			zap.String("url", url),
			zap.String("title", track.Title))
	}

	return track, nil
}

// enrich fills duration and cover art from the streaming API. Best effort.
func (r *AggregatorResolver) enrich(ctx context.Context, track *Track, spRecord PlatformRecord) {
	if r.metadata == nil || spRecord.EntityID == "" {
		return
	}

	full, err := r.metadata.GetTrack(ctx, spRecord.EntityID)
	if err != nil {
		r.logger.Warn("Failed to enrich track metadata",
			zap.String("track_id", spRecord.EntityID),
			zap.Error(err))
		return
	}

	track.Duration = full.Duration
	if full.ThumbnailURL != "" {
		track.ThumbnailURL = full.ThumbnailURL
	}
}

// searchFallback locates a downloadable source by text search when the
// aggregator has no video-platform record.
func (r *AggregatorResolver) searchFallback(ctx context.Context, spRecord PlatformRecord) (*Track, error) {
	query := strings.TrimSpace(spRecord.Artist + " " + spRecord.Title)
	if query == "" {
		return nil, fmt.Errorf("nothing to search for: %w", ErrNotFound)
	}

	r.logger.Warn("No video record from aggregator, falling back to search",
		zap.String("query", query))

	candidates, err := r.searcher.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("search fallback found nothing for %q: %w", query, ErrNotFound)
	}

	track, err := r.video.Metadata(ctx, candidates[0].WatchLink)
	if err != nil {
		return nil, err
	}

	// Keep the curated display metadata, only the audio source is guessed.
	track.Title = spRecord.Title
	track.Artist = spRecord.Artist
	if spRecord.ThumbnailURL != "" {
		track.ThumbnailURL = spRecord.ThumbnailURL
	}
	track.Links = append(track.Links, ProviderLink{
		Platform:    PlatformSpotify,
		PlayableURL: spRecord.URL,
	})
	track.LowConfidence = true

	r.enrich(ctx, track, spRecord)
	return track, nil
}

// SearchResolver resolves links without the aggregator: video links via
// direct metadata lookup, streaming links via the streaming API plus a
// text search for the audio source.
type SearchResolver struct {
	metadata   MetadataClient
	classifier LinkClassifier
	searcher   Searcher
	video      VideoLookup
	cache      TrackCache
	logger     *zap.Logger
}

func NewSearchResolver(
	metadata MetadataClient,
	classifier LinkClassifier,
	searcher Searcher,
	video VideoLookup,
	cache TrackCache,
	logger *zap.Logger,
) *SearchResolver {
	return &SearchResolver{
		metadata:   metadata,
		classifier: classifier,
		searcher:   searcher,
		video:      video,
		cache:      cache,
		logger:     logger.Named("resolver"),
	}
}

// Resolve turns a user-supplied URL into a full Track.
func (r *SearchResolver) Resolve(ctx context.Context, url string) (*Track, error) {
	if track, ok := r.cache.Get(url); ok {
		r.logger.Debug("Resolved from cache", zap.String("url", url))
		return track, nil
	}

	platform, ok := r.classifier.Recognize(url)
	if !ok {
		return nil, fmt.Errorf("unrecognized link %q: %w", url, ErrUnsupportedLink)
	}

	var track *Track
	var err error
	switch platform {
	case PlatformYouTube:
		track, err = r.video.Metadata(ctx, url)
	case PlatformSpotify:
		track, err = r.resolveStreamingLink(ctx, url)
	default:
		return nil, ErrUnsupportedLink
	}
	if err != nil {
		return nil, err
	}

	r.cache.Put(url, track)
	return track, nil
}

func (r *SearchResolver) resolveStreamingLink(ctx context.Context, url string) (*Track, error) {
	if r.metadata == nil {
		return nil, fmt.Errorf("streaming links need streaming credentials: %w", ErrUnsupportedLink)
	}

	trackID, err := r.classifier.ExtractTrackID(url)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnsupportedLink)
	}

	track, err := r.metadata.GetTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(track.Artist + " " + track.Title)
	candidates, err := r.searcher.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no video source found for %q: %w", query, ErrNotFound)
	}

	track.Links = append(track.Links,
		ProviderLink{Platform: PlatformYouTube, PlayableURL: candidates[0].WatchLink},
		ProviderLink{Platform: PlatformSpotify, PlayableURL: url},
	)
	return track, nil
}

// NewResolver builds the resolver selected by the configured backend.
func NewResolver(
	cfg *ResolverConfig,
	aggregator Aggregator,
	metadata MetadataClient,
	classifier LinkClassifier,
	searcher Searcher,
	video VideoLookup,
	cache TrackCache,
	logger *zap.Logger,
) (Resolver, error) {
	switch cfg.Backend {
	case BackendAggregator:
		return NewAggregatorResolver(aggregator, metadata, classifier, searcher, video, cache, logger), nil
	case BackendSearch:
		return NewSearchResolver(metadata, classifier, searcher, video, cache, logger), nil
	default:
		return nil, fmt.Errorf("unknown resolver backend %q", cfg.Backend)
	}
}
