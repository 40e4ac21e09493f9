package domain

import "context"

// EngineInfo is the raw metadata the extraction engine reports. Empty strings mean
// the engine did not provide the field.
type EngineInfo struct {
	Title     string
	ViewCount int64
	Uploader  string
	Channel   string
	Creator   string
	Artist    string
	Thumbnail string
}

// PostProcessor is one step of the engine's post-processing chain.
type PostProcessor interface {
	postProcessor()
}

// ExtractAudio transcodes the best audio stream to Codec.
type ExtractAudio struct {
	Codec   string
	Quality string
}

// EmbedMetadata writes title/artist tags into the output file.
type EmbedMetadata struct {
	Title  string
	Artist string
}

// EmbedThumbnail attaches the thumbnail as cover art.
type EmbedThumbnail struct{}

// ConvertThumbnail converts written thumbnails to Format.
type ConvertThumbnail struct {
	Format string
}

func (ExtractAudio) postProcessor()     {}
func (EmbedMetadata) postProcessor()    {}
func (EmbedThumbnail) postProcessor()   {}
func (ConvertThumbnail) postProcessor() {}

// DownloadOptions is the engine configuration for one download.
type DownloadOptions struct {
	Format         string
	MergeFormat    string
	OutputTemplate string
	CookieFile     string
	PostProcessors []PostProcessor
	WriteThumbnail bool
	SkipMedia      bool
}

// Engine resolves URLs and produces media files on disk.
type Engine interface {
	Extract(ctx context.Context, url string, cookieFile string) (*EngineInfo, error)
	Download(ctx context.Context, url string, opts DownloadOptions) error
}
