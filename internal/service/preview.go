package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPreviewBytes = 2 << 20

// Preview is what a page's Open Graph tags say about it.
type Preview struct {
	Title  string
	Image  string
	Author string
}

// PreviewScraper reads Open Graph tags from a page. It fills gaps the engine
// leaves in metadata.
type PreviewScraper struct {
	httpClient *http.Client
}

func NewPreviewScraper() *PreviewScraper {
	return &PreviewScraper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *PreviewScraper) Scrape(ctx context.Context, pageURL string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; mediagrab/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	preview := &Preview{
		Title:  metaContent(doc, `meta[property="og:title"]`, `meta[name="twitter:title"]`),
		Image:  metaContent(doc, `meta[property="og:image"]`, `meta[name="twitter:image"]`),
		Author: metaContent(doc, `meta[name="author"]`, `meta[property="og:site_name"]`),
	}
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return preview, nil
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
