package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the song does not exist or has no downloadable
	// platform link. User-facing, non-retryable.
	ErrNotFound = errors.New("song not found")

	// ErrUnsupportedLink indicates the input did not match a recognized link
	// shape. Rejected before any network call.
	ErrUnsupportedLink = errors.New("unsupported link")
)

// AgeRestrictedError is the distinguished signal raised when the source
// platform reports an age gate on the requested track.
type AgeRestrictedError struct {
	URL string
}

func (e *AgeRestrictedError) Error() string {
	return fmt.Sprintf("source is age-restricted: %s", e.URL)
}

// UpstreamError wraps an upstream 5xx or transport failure. Safe for the
// user to retry manually; never retried automatically.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err classifies as a missing song.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnsupportedLink)
}

// IsAgeRestricted reports whether err is the distinguished age-gate signal.
func IsAgeRestricted(err error) bool {
	var are *AgeRestrictedError
	return errors.As(err, &are)
}

// FailureState maps a pipeline error to the job's terminal failure state.
func FailureState(err error) JobState {
	switch {
	case err == nil:
		return JobDelivered
	case IsNotFound(err):
		return JobNotFound
	case IsAgeRestricted(err):
		return JobAgeRestricted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return JobCancelled
	default:
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return JobHTTPFailure
		}
		return JobUnknownFailure
	}
}
