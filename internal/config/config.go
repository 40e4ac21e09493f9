package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core. Only the serve command needs it, see RequireBotToken.
	BotToken string `env:"BOT_TOKEN,unset"`

	// Storage
	DownloadDir string `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	CookiesDir  string `env:"COOKIES_DIR" envDefault:"cookies"`

	// Engine
	YtdlpPath        string `env:"YTDLP_PATH"`
	YtdlpAutoInstall bool   `env:"YTDLP_AUTO_INSTALL" envDefault:"false"`

	// Pipeline
	MaxWorkers      int           `env:"MAX_WORKERS" envDefault:"8"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MetadataTimeout time.Duration `env:"METADATA_TIMEOUT" envDefault:"60s"`
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"15m"`
	RetryDelay      time.Duration `env:"RETRY_DELAY" envDefault:"3s"`

	// Links shown under the variant keyboard
	SupportURL string `env:"SUPPORT_URL" envDefault:"https://t.me/mediagrab_support"`
	ChannelURL string `env:"CHANNEL_URL" envDefault:"https://t.me/mediagrab_news"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Server
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`

	// Bot behavior
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicDownload  int   `env:"LOG_TOPIC_DOWNLOAD"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxWorkers < 1 {
		return nil, fmt.Errorf("parse config: MAX_WORKERS must be positive, got %d", cfg.MaxWorkers)
	}
	return cfg, nil
}

// RequireBotToken fails when BOT_TOKEN is not set.
func (c *Config) RequireBotToken() error {
	if c.BotToken == "" {
		return errors.New("parse config: BOT_TOKEN is required")
	}
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
