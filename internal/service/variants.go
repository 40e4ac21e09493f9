package service

import (
	"fmt"

	"github.com/set-night/mediagrab/internal/domain"
)

// VideoConfig is the engine setup for the video variant.
type VideoConfig struct {
	MaxHeight int
	Container string
}

// AudioConfig is the engine setup for the audio variant.
type AudioConfig struct {
	Codec    string
	Quality  string
	CoverArt bool
}

// VoiceConfig is the engine setup for the voice-note variant.
type VoiceConfig struct {
	Codec   string
	Quality string
}

// ThumbnailConfig is the engine setup for the thumbnail-only variant.
type ThumbnailConfig struct {
	Format string
}

var (
	defaultVideo     = VideoConfig{MaxHeight: 720, Container: "mp4"}
	defaultAudio     = AudioConfig{Codec: "mp3", Quality: "192K", CoverArt: true}
	defaultVoice     = VoiceConfig{Codec: "opus", Quality: "64K"}
	defaultThumbnail = ThumbnailConfig{Format: "jpg"}
)

// DownloadRequest is everything the orchestrator needs for one chosen variant.
type DownloadRequest struct {
	ChatID   int64
	URL      string
	Metadata domain.Metadata
	Variant  domain.Variant
}

// BaseName is the sanitized artifact name shared by every file of the request.
func (r DownloadRequest) BaseName() string {
	return artifactBase(r.ChatID, r.Metadata.Title)
}

func (c VideoConfig) options() domain.DownloadOptions {
	format := fmt.Sprintf("bestvideo[height<=%d][ext=%s]+bestaudio[ext=m4a]/best[height<=%d][ext=%s]/best[height<=%d]/best",
		c.MaxHeight, c.Container, c.MaxHeight, c.Container, c.MaxHeight)
	return domain.DownloadOptions{Format: format, MergeFormat: c.Container}
}

func (c AudioConfig) options(meta domain.Metadata) domain.DownloadOptions {
	opts := domain.DownloadOptions{
		Format: "bestaudio/best",
		PostProcessors: []domain.PostProcessor{
			domain.ExtractAudio{Codec: c.Codec, Quality: c.Quality},
			domain.EmbedMetadata{Title: meta.Title, Artist: meta.Author},
		},
	}
	if c.CoverArt {
		opts.PostProcessors = append(opts.PostProcessors, domain.EmbedThumbnail{})
	}
	return opts
}

func (c VoiceConfig) options(meta domain.Metadata) domain.DownloadOptions {
	return domain.DownloadOptions{
		Format: "bestaudio/best",
		PostProcessors: []domain.PostProcessor{
			domain.ExtractAudio{Codec: c.Codec, Quality: c.Quality},
			domain.EmbedMetadata{Title: meta.Title, Artist: meta.Author},
		},
	}
}

func (c ThumbnailConfig) options() domain.DownloadOptions {
	return domain.DownloadOptions{
		SkipMedia:      true,
		WriteThumbnail: true,
		PostProcessors: []domain.PostProcessor{
			domain.ConvertThumbnail{Format: c.Format},
		},
	}
}

// EngineOptions maps a request to the engine configuration for its variant.
// cookieFile may be empty.
func EngineOptions(req DownloadRequest, outputTemplate, cookieFile string) (domain.DownloadOptions, error) {
	var opts domain.DownloadOptions
	switch req.Variant {
	case domain.VariantVideo:
		opts = defaultVideo.options()
	case domain.VariantAudio:
		opts = defaultAudio.options(req.Metadata)
	case domain.VariantVoice:
		opts = defaultVoice.options(req.Metadata)
	case domain.VariantThumbnail:
		opts = defaultThumbnail.options()
	default:
		return domain.DownloadOptions{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, req.Variant)
	}
	opts.OutputTemplate = outputTemplate
	opts.CookieFile = cookieFile
	return opts, nil
}

// artifactExtensions lists acceptable output extensions per variant, preferred first.
func artifactExtensions(v domain.Variant) []string {
	switch v {
	case domain.VariantVideo:
		return []string{"mp4", "mkv", "webm"}
	case domain.VariantAudio:
		return []string{"mp3"}
	case domain.VariantVoice:
		return []string{"opus", "ogg"}
	case domain.VariantThumbnail:
		return []string{"jpg", "jpeg", "png", "webp"}
	default:
		return nil
	}
}
