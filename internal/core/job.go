package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"songfetch/internal/chat"
)

// runChatJob drives one chat-origin job from resolution to audio delivery.
// replyToID may be empty when the job resumes from a selection prompt.
func (d *Dispatcher) runChatJob(ctx context.Context, job *Job, replyToID, link string) {
	progressID, err := d.frontend.SendText(ctx, job.ChatID, replyToID, d.localizer.T("status.resolving"))
	if err != nil {
		d.logger.Error("Failed to send progress message", zap.Error(err))
		d.finishJob(ctx, job, err)
		return
	}
	job.MessageID = progressID

	track, err := d.resolveStep(ctx, job, link)
	if err != nil {
		d.failChatJob(ctx, job, err)
		return
	}

	sourceURL, ok := track.DownloadURL()
	if !ok {
		d.failChatJob(ctx, job, fmt.Errorf("track %s has no downloadable link: %w", track.ID, ErrNotFound))
		return
	}

	if err := d.downloadStep(ctx, job, track, sourceURL); err != nil {
		d.failChatJob(ctx, job, err)
		return
	}

	d.thumbnailStep(ctx, job, track)

	if err := d.uploadStep(ctx, job, track); err != nil {
		d.failChatJob(ctx, job, err)
		return
	}

	if err := d.frontend.DeleteMessage(ctx, job.ChatID, job.MessageID); err != nil {
		d.logger.Debug("Failed to delete progress message", zap.Error(err))
	}

	d.finishJob(ctx, job, nil)
}

// runInlineJob resolves a track and edits the inline message with its
// metadata. Inline messages cannot receive file uploads, so delivery is
// the resolved metadata and canonical link.
func (d *Dispatcher) runInlineJob(ctx context.Context, job *Job, link string) {
	if err := d.frontend.EditInlineText(ctx, job.InlineMessageID, d.localizer.T("delivery.inline_loading")); err != nil {
		d.logger.Debug("Failed to edit inline message", zap.Error(err))
	}

	track, err := d.resolveStep(ctx, job, link)
	if err != nil {
		d.transition(job, FailureState(err))
		if editErr := d.frontend.EditInlineText(ctx, job.InlineMessageID, d.failureText(job.State)); editErr != nil {
			d.logger.Debug("Failed to edit inline message", zap.Error(editErr))
		}
		d.finishJob(ctx, job, err)
		return
	}

	shareLink := track.CanonicalLink
	if shareLink == "" {
		shareLink, _ = track.DownloadURL()
	}

	// Nothing is downloaded or staged for inline delivery, so the job
	// skips from Resolving straight to Uploading.
	d.transition(job, JobUploading)
	text := d.localizer.T("delivery.inline_ready", track.Artist, track.Title, shareLink)
	if err := d.frontend.EditInlineText(ctx, job.InlineMessageID, text); err != nil {
		d.finishJob(ctx, job, fmt.Errorf("failed to deliver inline result: %w", err))
		return
	}

	d.finishJob(ctx, job, nil)
}

func (d *Dispatcher) resolveStep(ctx context.Context, job *Job, link string) (*Track, error) {
	d.transition(job, JobResolving)

	start := time.Now()
	track, err := d.resolver.Resolve(ctx, link)
	d.metrics.ObserveStep("resolve", time.Since(start))
	if err != nil {
		return nil, err
	}

	job.Track = track
	d.logger.Info("Resolved track",
		zap.String("job", job.RequestID),
		zap.String("track", track.ID),
		zap.String("title", track.Title),
		zap.String("artist", track.Artist),
		zap.Bool("low_confidence", track.LowConfidence))
	return track, nil
}

// downloadStep fetches and transcodes the audio. Concurrent jobs for the
// same track share one yt-dlp run.
func (d *Dispatcher) downloadStep(ctx context.Context, job *Job, track *Track, sourceURL string) error {
	d.transition(job, JobDownloading)
	d.editText(ctx, job.ChatID, job.MessageID, d.localizer.T("status.download"))

	job.StagedAudioPath = d.artifacts.Stage(track.ID, ArtifactAudio)

	start := time.Now()
	_, err, shared := d.downloads.Do(track.ID, func() (interface{}, error) {
		return nil, d.downloader.Download(ctx, sourceURL, job.StagedAudioPath)
	})
	d.metrics.ObserveStep("download", time.Since(start))

	if shared {
		d.logger.Debug("Download coalesced with concurrent job",
			zap.String("track", track.ID))
	}
	if err != nil {
		d.metrics.RecordDownload("error")
		return err
	}

	d.metrics.RecordDownload("ok")
	return nil
}

// thumbnailStep stages the cover image. Failures degrade to an audio-only
// delivery instead of failing the job.
func (d *Dispatcher) thumbnailStep(ctx context.Context, job *Job, track *Track) {
	if track.ThumbnailURL == "" {
		return
	}

	d.transition(job, JobStagingThumbnail)

	path := d.artifacts.Stage(track.ID, ArtifactThumbnail)
	if err := d.artifacts.StageFromURL(ctx, track.ThumbnailURL, path); err != nil {
		d.logger.Warn("Failed to stage thumbnail, delivering without cover",
			zap.String("track", track.ID),
			zap.Error(err))
		return
	}
	job.StagedThumbnailPath = path
}

func (d *Dispatcher) uploadStep(ctx context.Context, job *Job, track *Track) error {
	d.transition(job, JobUploading)
	d.editText(ctx, job.ChatID, job.MessageID, d.localizer.T("status.upload"))

	audio := &chat.Audio{
		FilePath:      job.StagedAudioPath,
		ThumbnailPath: job.StagedThumbnailPath,
		Title:         track.Title,
		Performer:     track.Artist,
		DurationSecs:  int(track.Duration.Seconds()),
	}
	if track.CanonicalLink != "" {
		audio.Caption = d.localizer.T("delivery.caption", escapeMarkdownV2URL(track.CanonicalLink))
	}

	start := time.Now()
	err := d.frontend.SendAudio(ctx, job.ChatID, audio)
	d.metrics.ObserveStep("upload", time.Since(start))
	if err != nil {
		return &UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}

// failChatJob replaces the progress message with a user-facing error.
func (d *Dispatcher) failChatJob(ctx context.Context, job *Job, err error) {
	state := FailureState(err)
	d.editText(ctx, job.ChatID, job.MessageID, d.failureText(state))
	d.finishJob(ctx, job, err)
}

// finishJob settles a job into its terminal state, releases every staged
// artifact and records the outcome.
func (d *Dispatcher) finishJob(ctx context.Context, job *Job, err error) {
	job.Err = err
	d.transition(job, FailureState(err))

	if releaseErr := d.artifacts.Release(job.StagedAudioPath); releaseErr != nil {
		d.logger.Warn("Failed to release audio artifact", zap.Error(releaseErr))
	}
	if releaseErr := d.artifacts.Release(job.StagedThumbnailPath); releaseErr != nil {
		d.logger.Warn("Failed to release thumbnail artifact", zap.Error(releaseErr))
	}

	rec := DeliveryRecord{
		RequestedBy: job.RequestedBy,
		Outcome:     job.State.String(),
		At:          time.Now(),
	}
	if job.Track != nil {
		rec.TrackID = job.Track.ID
		rec.Title = job.Track.Title
		rec.Artist = job.Track.Artist
	}
	if histErr := d.history.Record(ctx, rec); histErr != nil {
		d.logger.Warn("Failed to record history", zap.Error(histErr))
	}

	d.metrics.RecordJob(job.State.String())
	d.metrics.SetActiveJobs(int(d.activeJobs.Add(-1)))

	if err != nil {
		d.logger.Info("Job failed",
			zap.String("job", job.RequestID),
			zap.String("state", job.State.String()),
			zap.Duration("took", time.Since(job.StartedAt)),
			zap.Error(err))
	} else {
		d.logger.Info("Job finished",
			zap.String("job", job.RequestID),
			zap.String("state", job.State.String()),
			zap.Duration("took", time.Since(job.StartedAt)))
	}
}

// failureText maps a terminal failure state to its user-facing message.
func (d *Dispatcher) failureText(state JobState) string {
	switch state {
	case JobNotFound:
		return d.localizer.T("error.not_found")
	case JobAgeRestricted:
		return d.localizer.T("error.age_restricted")
	case JobHTTPFailure:
		return d.localizer.T("error.http")
	case JobCancelled:
		return d.localizer.T("selection.expired")
	default:
		return d.localizer.T("error.unknown")
	}
}

// escapeMarkdownV2URL escapes the characters Telegram's MarkdownV2 parser
// treats as markup inside the URL part of an inline link. Only ')' and
// '\' need escaping there.
func escapeMarkdownV2URL(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		")", "\\)",
	)
	return replacer.Replace(s)
}
