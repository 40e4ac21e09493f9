package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// File names are capped at 255 bytes. The rest is left for the chat id
	// prefix and suffixes like ".f251.webm.part".
	maxFilenameBytes = 180
	fallbackFilename = "media"
)

// SanitizeFilename turns a title into a token safe to use as a file name on any
// platform. It never fails and SanitizeFilename(SanitizeFilename(x)) == SanitizeFilename(x).
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if forbiddenRune(r) {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > maxFilenameBytes {
			break
		}
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), " .")
	if name == "" {
		return fallbackFilename
	}
	return name
}

func forbiddenRune(r rune) bool {
	switch r {
	case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
		return true
	}
	return unicode.IsControl(r) || r == unicode.ReplacementChar
}
