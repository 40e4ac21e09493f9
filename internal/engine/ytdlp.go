// Package engine implements domain.Engine on top of the yt-dlp binary
// (via github.com/lrstanley/go-ytdlp).
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/set-night/mediagrab/internal/domain"
)

// YTDLP runs yt-dlp for metadata lookups and downloads.
type YTDLP struct {
	executable string
}

// New returns an engine using executable, or yt-dlp from PATH when empty.
func New(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

// Install downloads a yt-dlp build into the user cache when none is available
// and returns the engine bound to it.
func Install(ctx context.Context) (*YTDLP, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("install yt-dlp: %w", err)
	}
	slog.Info("yt-dlp ready", "executable", resolved.Executable, "version", resolved.Version)
	return New(resolved.Executable), nil
}

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().NoPlaylist().NoWarnings().NoProgress()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	return cmd
}

type extractedInfo struct {
	Title     string `json:"title"`
	ViewCount *int64 `json:"view_count"`
	Uploader  string `json:"uploader"`
	Channel   string `json:"channel"`
	Creator   string `json:"creator"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail"`
}

func (y *YTDLP) Extract(ctx context.Context, url string, cookieFile string) (*domain.EngineInfo, error) {
	cmd := y.command().SkipDownload().DumpSingleJSON()
	if cookieFile != "" {
		cmd = cmd.Cookies(cookieFile)
	}

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extract info: %w", withStderr(err, result))
	}

	var info extractedInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("parse info: %w", err)
	}

	out := &domain.EngineInfo{
		Title:     info.Title,
		Uploader:  info.Uploader,
		Channel:   info.Channel,
		Creator:   info.Creator,
		Artist:    info.Artist,
		Thumbnail: info.Thumbnail,
	}
	if info.ViewCount != nil {
		out.ViewCount = *info.ViewCount
	}
	return out, nil
}

func (y *YTDLP) Download(ctx context.Context, url string, opts domain.DownloadOptions) error {
	cmd := y.command().Output(escapeTemplate(opts.OutputTemplate))

	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.MergeFormat != "" {
		cmd = cmd.MergeOutputFormat(opts.MergeFormat)
	}
	if opts.CookieFile != "" {
		cmd = cmd.Cookies(opts.CookieFile)
	}
	if opts.SkipMedia {
		cmd = cmd.SkipDownload()
	}
	if opts.WriteThumbnail {
		cmd = cmd.WriteThumbnail()
	}

	for _, pp := range opts.PostProcessors {
		switch p := pp.(type) {
		case domain.ExtractAudio:
			cmd = cmd.ExtractAudio().AudioFormat(p.Codec)
			if p.Quality != "" {
				cmd = cmd.AudioQuality(p.Quality)
			}
		case domain.EmbedMetadata:
			cmd = cmd.EmbedMetadata().
				ParseMetadata(literalTemplate(p.Title) + ":%(meta_title)s").
				ParseMetadata(literalTemplate(p.Artist) + ":%(meta_artist)s")
		case domain.EmbedThumbnail:
			cmd = cmd.EmbedThumbnail()
		case domain.ConvertThumbnail:
			cmd = cmd.ConvertThumbnails(p.Format)
		default:
			return fmt.Errorf("unsupported post-processor %T", pp)
		}
	}

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return fmt.Errorf("download: %w", withStderr(err, result))
	}
	return nil
}

// escapeTemplate keeps literal percent signs in file names from being read as
// template fields. The trailing "%(ext)s" stays a field.
func escapeTemplate(tmpl string) string {
	const extField = "%(ext)s"
	if !strings.HasSuffix(tmpl, extField) {
		return strings.ReplaceAll(tmpl, "%", "%%")
	}
	head := strings.TrimSuffix(tmpl, extField)
	return strings.ReplaceAll(head, "%", "%%") + extField
}

// literalTemplate renders v as a parse-metadata source that always yields v: a
// field that never exists, defaulting to the literal value.
func literalTemplate(v string) string {
	r := strings.NewReplacer("%", "", ")", "", "\\", "", ":", "\\:")
	return "%(mediagrab_literal|" + r.Replace(v) + ")s"
}

func withStderr(err error, result *ytdlp.Result) error {
	if result == nil {
		return err
	}
	stderr := strings.TrimSpace(result.Stderr)
	if stderr == "" {
		return err
	}
	lines := strings.Split(stderr, "\n")
	return fmt.Errorf("%w: %s", err, strings.TrimSpace(lines[len(lines)-1]))
}
