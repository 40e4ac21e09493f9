package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/set-night/mediagrab/internal/config"
)

// ThumbnailFetcher downloads preview images to attach to uploads.
type ThumbnailFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewThumbnailFetcher() *ThumbnailFetcher {
	return &ThumbnailFetcher{
		httpClient: &http.Client{Timeout: config.ThumbnailTimeout},
		maxBytes:   config.ThumbnailMaxBytes,
	}
}

// Fetch downloads the image at url. Images above the size cap are rejected.
func (f *ThumbnailFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download thumbnail: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail data: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("thumbnail larger than %d bytes", f.maxBytes)
	}

	return data, nil
}
