package config

import "time"

const (
	// Download attempts per chosen variant, first try included
	MaxAttempts = 3

	// Telegram bot API upload ceiling with some headroom
	MaxFileSize = 48 * 1024 * 1024

	// Telegram limits
	MaxTelegramMessageLen = 4096
	MaxCaptionLen         = 1024

	// Thumbnails larger than this are not attached to uploads
	ThumbnailMaxBytes = 5 * 1024 * 1024
	ThumbnailTimeout  = 15 * time.Second

	// Rate limits (per minute, per chat)
	RateLimitPerMinute = 20

	// Abandoned session sweep interval
	SessionSweepInterval = 1 * time.Minute

	// Chat action refresh period
	ChatActionInterval = 4 * time.Second

	// Callback data prefix for variant buttons
	VariantCallbackPrefix = "fmt:"
)

// CookieFiles maps URL substrings to credential bundle names inside COOKIES_DIR.
// Order matters: the first token found in the URL wins.
var CookieFiles = []struct {
	Token string
	File  string
}{
	{Token: "youtube.com", File: "youtube.txt"},
	{Token: "youtu.be", File: "youtube.txt"},
	{Token: "instagram.com", File: "instagram.txt"},
	{Token: "facebook.com", File: "facebook.txt"},
	{Token: "fb.watch", File: "facebook.txt"},
	{Token: "tiktok.com", File: "tiktok.txt"},
	{Token: "twitter.com", File: "twitter.txt"},
	{Token: "x.com", File: "twitter.txt"},
}
