package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
)

type TelegramLogger struct {
	transport Transport
	cfg       *config.Config
}

func NewTelegramLogger(t Transport, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{transport: t, cfg: cfg}
}

type LogType string

const (
	LogTypeError    LogType = "error"
	LogTypeDownload LogType = "download"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ Error\n\nContext: %s\nError: %s\nTime: %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogDownload(key domain.SessionKey, url string, art *domain.Artifact) {
	msg := fmt.Sprintf("📦 Delivered\n\nUser: %d\nChat: %d\nURL: %s\nVariant: %s\nSize: %.1f MiB\nAttempts: %d\nReused: %t",
		key.UserID, key.ChatID, url, art.Variant, float64(art.Size)/(1<<20), art.Attempts, art.Reused)
	l.Log(LogTypeDownload, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeDownload:
		return l.cfg.LogTopicDownload
	default:
		return 0
	}
}
