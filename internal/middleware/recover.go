package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// PanicReporter receives recovered panics, e.g. to mirror them to an admin chat.
type PanicReporter func(err error, where string)

// Recover returns middleware that recovers from panics raised while handling an
// update. Install it after Logging so the request id is in the log line.
func Recover(report PanicReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				kind, chatID, userID := updateOrigin(update)
				Logger(ctx).Error("panic recovered in update handler",
					"update_id", update.ID,
					"type", kind,
					"chat_id", chatID,
					"user_id", userID,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				if report != nil {
					report(fmt.Errorf("panic: %v", r), fmt.Sprintf("%s update %d from chat %d", kind, update.ID, chatID))
				}
			}()
			next(ctx, b, update)
		}
	}
}
