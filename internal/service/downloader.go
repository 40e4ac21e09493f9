package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/storage"
)

// ThumbnailSource fetches preview images for uploads.
type ThumbnailSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DownloaderOptions tunes the retry and admission policy.
type DownloaderOptions struct {
	MaxAttempts int
	MaxFileSize int64
	RetryDelay  time.Duration
}

// Downloader drives the engine for a chosen variant: it reuses an artifact that
// already exists, retries engine failures a bounded number of times and rejects
// artifacts that are too large to deliver.
type Downloader struct {
	engine      domain.Engine
	cookies     *CookieSelector
	artifacts   *storage.ArtifactStore
	thumbnails  ThumbnailSource
	locks       *KeyLocks
	maxAttempts int
	maxFileSize int64
	retryDelay  time.Duration
}

// NewDownloader builds the orchestrator. thumbnails may be nil.
func NewDownloader(engine domain.Engine, cookies *CookieSelector, artifacts *storage.ArtifactStore, thumbnails ThumbnailSource, opts DownloaderOptions) *Downloader {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Downloader{
		engine:      engine,
		cookies:     cookies,
		artifacts:   artifacts,
		thumbnails:  thumbnails,
		locks:       NewKeyLocks(),
		maxAttempts: opts.MaxAttempts,
		maxFileSize: opts.MaxFileSize,
		retryDelay:  opts.RetryDelay,
	}
}

// Lock serializes work on one (chat, title) artifact name. Hold it from the
// existence check until cleanup.
func (d *Downloader) Lock(req DownloadRequest) func() {
	return d.locks.Lock(req.BaseName())
}

// InFlight counts downloads holding or waiting on an artifact name.
func (d *Downloader) InFlight() int {
	return d.locks.Held()
}

// Download produces the artifact for req. Permanent failures are returned as
// *domain.DownloadError and leave no files behind.
func (d *Downloader) Download(ctx context.Context, req DownloadRequest) (*domain.Artifact, error) {
	base := req.BaseName()
	exts := artifactExtensions(req.Variant)

	opts, err := EngineOptions(req, d.artifacts.OutputTemplate(base), d.cookies.Select(req.URL))
	if err != nil {
		return nil, err
	}

	log := slog.With("chat_id", req.ChatID, "variant", req.Variant, "artifact", base)

	var (
		path     string
		size     int64
		found    bool
		reused   bool
		attempts int
		lastErr  error
	)

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := d.wait(ctx); err != nil {
				lastErr = err
				break
			}
		}
		attempts = attempt

		if p, s, ok := d.artifacts.Locate(base, exts...); ok {
			path, size, found, reused = p, s, true, true
			log.Info("reusing existing artifact", "path", p, "attempt", attempt)
			break
		}

		if err := d.engine.Download(ctx, req.URL, opts); err != nil {
			lastErr = err
			log.Warn("download attempt failed", "attempt", attempt, "max_attempts", d.maxAttempts, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		p, s, ok := d.artifacts.Locate(base, exts...)
		if !ok {
			lastErr = domain.ErrMissingArtifact
			log.Warn("download attempt failed", "attempt", attempt, "max_attempts", d.maxAttempts, "error", lastErr)
			continue
		}
		path, size, found = p, s, true
		break
	}

	if !found {
		d.Cleanup(base)
		log.Error("download failed", "attempts", attempts, "error", lastErr)
		return nil, &domain.DownloadError{Kind: domain.DownloadFailed, Attempts: attempts, Err: lastErr}
	}

	if d.maxFileSize > 0 && size > d.maxFileSize {
		d.Cleanup(base)
		log.Warn("artifact exceeds size limit", "size", size, "limit", d.maxFileSize)
		return nil, &domain.DownloadError{Kind: domain.DownloadTooLarge, Attempts: attempts, Size: size}
	}

	log.Info("download succeeded", "attempts", attempts, "size", size, "reused", reused)

	return &domain.Artifact{
		Path:      path,
		Size:      size,
		Variant:   req.Variant,
		Reused:    reused,
		Attempts:  attempts,
		Thumbnail: d.fetchThumbnail(ctx, req),
	}, nil
}

// Cleanup removes every file named after base. Failures are logged only.
func (d *Downloader) Cleanup(base string) {
	removed, err := d.artifacts.Cleanup(base)
	if err != nil {
		slog.Warn("artifact cleanup failed", "artifact", base, "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		slog.Debug("artifacts removed", "artifact", base, "removed", removed)
	}
}

func (d *Downloader) wait(ctx context.Context) error {
	if d.retryDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Downloader) fetchThumbnail(ctx context.Context, req DownloadRequest) []byte {
	if d.thumbnails == nil || req.Metadata.ThumbnailURL == "" {
		return nil
	}
	if req.Variant != domain.VariantVideo && req.Variant != domain.VariantAudio {
		return nil
	}
	data, err := d.thumbnails.Fetch(ctx, req.Metadata.ThumbnailURL)
	if err != nil {
		slog.Debug("thumbnail fetch failed", "url", req.Metadata.ThumbnailURL, "error", err)
		return nil
	}
	return data
}

func artifactBase(chatID int64, title string) string {
	return storage.BaseName(chatID, SanitizeFilename(title))
}

// String renders a request for logs.
func (r DownloadRequest) String() string {
	return fmt.Sprintf("%s (%s)", r.BaseName(), r.Variant)
}
