package service

import (
	"context"
	"fmt"
	"log/slog"
	neturl "net/url"
	"time"

	"github.com/set-night/mediagrab/internal/domain"
)

// PreviewSource supplies page-level metadata when the engine omits fields.
type PreviewSource interface {
	Scrape(ctx context.Context, pageURL string) (*Preview, error)
}

// MetadataResolver asks the engine about a URL without downloading anything.
type MetadataResolver struct {
	engine  domain.Engine
	cookies *CookieSelector
	preview PreviewSource
	timeout time.Duration
}

// NewMetadataResolver builds a resolver. preview may be nil.
func NewMetadataResolver(engine domain.Engine, cookies *CookieSelector, preview PreviewSource, timeout time.Duration) *MetadataResolver {
	return &MetadataResolver{
		engine:  engine,
		cookies: cookies,
		preview: preview,
		timeout: timeout,
	}
}

// Resolve returns the metadata for url or an error wrapping domain.ErrUnresolved.
func (r *MetadataResolver) Resolve(ctx context.Context, url string) (*domain.Metadata, error) {
	if !IsMediaURL(url) {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnresolved, domain.ErrInvalidURL)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	info, err := r.engine.Extract(ctx, url, r.cookies.Select(url))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnresolved, err)
	}

	var page *Preview
	if r.preview != nil && (info.Title == "" || info.Thumbnail == "" || authorOf(info) == "") {
		page, err = r.preview.Scrape(ctx, url)
		if err != nil {
			slog.Debug("preview scrape failed", "url", url, "error", err)
			page = nil
		}
	}
	if page == nil {
		page = &Preview{}
	}

	viewCount := info.ViewCount
	if viewCount < 0 {
		viewCount = 0
	}

	return &domain.Metadata{
		Title:        firstNonEmpty(info.Title, page.Title, domain.UnknownTitle),
		ViewCount:    viewCount,
		Author:       firstNonEmpty(authorOf(info), page.Author, domain.UnknownAuthor),
		ThumbnailURL: firstNonEmpty(info.Thumbnail, page.Image),
	}, nil
}

// IsMediaURL reports whether raw is an absolute http(s) URL with a host.
func IsMediaURL(raw string) bool {
	u, err := neturl.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func authorOf(info *domain.EngineInfo) string {
	return firstNonEmpty(info.Uploader, info.Channel, info.Creator, info.Artist)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
