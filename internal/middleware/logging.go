package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

type ctxKey string

const RequestIDKey ctxKey = "request_id"

// RequestID extracts the update's request id from context.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID stores a request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Logger returns the default logger tagged with the request id, if any.
func Logger(ctx context.Context) *slog.Logger {
	id := RequestID(ctx)
	if id == "" {
		return slog.Default()
	}
	return slog.Default().With("request_id", id)
}

// Logging returns middleware that tags each update with a request id and logs
// its processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			ctx = WithRequestID(ctx, uuid.NewString())

			updateType, chatID, userID := updateOrigin(update)

			next(ctx, b, update)

			Logger(ctx).Debug("update processed",
				"type", updateType,
				"chat_id", chatID,
				"user_id", userID,
				"duration", time.Since(start),
			)
		}
	}
}

// updateOrigin names the update type and the chat and user it came from.
func updateOrigin(update *models.Update) (string, int64, int64) {
	switch {
	case update.Message != nil:
		var userID int64
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		return "message", update.Message.Chat.ID, userID
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		var chatID int64
		if q.Message.Message != nil {
			chatID = q.Message.Message.Chat.ID
		} else if q.Message.InaccessibleMessage != nil {
			chatID = q.Message.InaccessibleMessage.Chat.ID
		}
		return "callback_query", chatID, q.From.ID
	}
	return "unknown", 0, 0
}
