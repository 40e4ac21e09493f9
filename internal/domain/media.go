package domain

import "fmt"

const (
	UnknownTitle  = "Untitled"
	UnknownAuthor = "Unknown author"
)

// Metadata is the snapshot the engine returns for a URL before anything is downloaded.
type Metadata struct {
	Title        string `json:"title"`
	ViewCount    int64  `json:"view_count"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Variant is one of the output kinds a user can pick for a resolved URL.
type Variant string

const (
	VariantVideo     Variant = "video"
	VariantAudio     Variant = "audio"
	VariantVoice     Variant = "voice"
	VariantThumbnail Variant = "thumbnail"
)

// Variants lists every variant in presentation order.
var Variants = []Variant{VariantVideo, VariantAudio, VariantVoice, VariantThumbnail}

// ParseVariant validates a variant name received from a button press.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Extension is the file extension the engine produces for the variant.
func (v Variant) Extension() string {
	switch v {
	case VariantVideo:
		return "mp4"
	case VariantAudio:
		return "mp3"
	case VariantVoice:
		return "opus"
	case VariantThumbnail:
		return "jpg"
	default:
		return ""
	}
}

// Artifact is a produced file waiting to be delivered.
type Artifact struct {
	Path      string
	Size      int64
	Variant   Variant
	Reused    bool
	Attempts  int
	Thumbnail []byte
}
