package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
)

// Truncate cuts text to at most maxLen runes, marking the cut with "...".
func Truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string([]rune(text)[:maxLen])
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}

// FormatCount renders n with comma grouping, e.g. 1234567 -> "1,234,567".
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// PreviewCaption describes resolved metadata above the variant keyboard.
func PreviewCaption(meta domain.Metadata) string {
	text := fmt.Sprintf("🎞 %s\n👁 %s views\n👤 %s\n\nChoose a format:",
		meta.Title, FormatCount(meta.ViewCount), meta.Author)
	return Truncate(text, config.MaxCaptionLen)
}

// MediaCaption is the caption attached to a delivered file.
func MediaCaption(meta domain.Metadata) string {
	return Truncate(fmt.Sprintf("🎞 %s\n👤 %s", meta.Title, meta.Author), config.MaxCaptionLen)
}
