package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnresolved       = errors.New("metadata unresolved")
	ErrInvalidURL       = errors.New("invalid url")
	ErrUnknownVariant   = errors.New("unknown variant")
	ErrSizeExceeded     = errors.New("artifact exceeds size limit")
	ErrRetriesExhausted = errors.New("download retries exhausted")
	ErrMissingArtifact  = errors.New("artifact not found after download")
)

// DownloadErrorKind classifies a terminal download failure.
type DownloadErrorKind int

const (
	DownloadFailed DownloadErrorKind = iota
	DownloadTooLarge
)

// DownloadError is the permanent failure returned by the orchestrator.
type DownloadError struct {
	Kind     DownloadErrorKind
	Attempts int
	Size     int64
	Err      error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case DownloadTooLarge:
		return fmt.Sprintf("%s: %d bytes", ErrSizeExceeded, e.Size)
	default:
		return fmt.Sprintf("%s after %d attempts: %v", ErrRetriesExhausted, e.Attempts, e.Err)
	}
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

func (e *DownloadError) Is(target error) bool {
	switch target {
	case ErrSizeExceeded:
		return e.Kind == DownloadTooLarge
	case ErrRetriesExhausted:
		return e.Kind == DownloadFailed
	}
	return false
}
