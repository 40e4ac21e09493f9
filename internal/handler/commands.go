package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/telegram"
)

func (h *Handler) handleCommand(ctx context.Context, ev Event) {
	chatID := ev.Key.ChatID

	switch ev.Command {
	case "start", "help":
		h.transport.SendMessage(ctx, welcomeParams(chatID, h.links))
	case "cancel":
		// Queued behind any running pipeline for the key so it never races it.
		h.dispatcher.Submit(ev.Key, func(ctx context.Context) { h.handleCancel(ctx, ev.Key) })
	case "stats":
		if !h.cfg.IsAdmin(ev.Key.UserID) {
			telegram.SendText(ctx, h.transport, chatID, textUnknownCommand)
			return
		}
		s := h.Stats()
		telegram.SendText(ctx, h.transport, chatID, fmt.Sprintf(textStats,
			s.Sessions, s.QueuedKeys, s.RunningTasks, s.InFlight, s.DiskFiles, float64(s.DiskBytes)/(1<<20)))
	default:
		telegram.SendText(ctx, h.transport, chatID, textUnknownCommand)
	}
}

func (h *Handler) handleCancel(ctx context.Context, key domain.SessionKey) {
	sess, ok := h.sessions.Get(key)
	if !ok || sess.State != domain.StateAwaitingFormat {
		telegram.SendText(ctx, h.transport, key.ChatID, textNothingPending)
		return
	}
	if !h.sessions.DestroyIf(key, sess.ID) {
		telegram.SendText(ctx, h.transport, key.ChatID, textNothingPending)
		return
	}
	telegram.DeleteMessages(ctx, h.transport, key.ChatID, sess.MessageIDs)
	telegram.SendText(ctx, h.transport, key.ChatID, textCancelled)
	slog.Info("session cancelled", "session_id", sess.ID, "key", key.String())
}

// SweepExpired drops pending sessions older than the configured TTL and removes
// their prompts. Returns how many were dropped.
func (h *Handler) SweepExpired(ctx context.Context) int {
	expired := h.sessions.Sweep(h.cfg.SessionTTL)
	for _, s := range expired {
		telegram.DeleteMessages(ctx, h.transport, s.Key.ChatID, s.MessageIDs)
	}
	if len(expired) > 0 {
		slog.Info("expired sessions swept", "count", len(expired))
	}
	return len(expired)
}

func welcomeParams(chatID int64, links telegram.Links) *bot.SendMessageParams {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   textWelcome,
	}
	// A nil *InlineKeyboardMarkup in the interface would still be serialized.
	if kb := telegram.LinksKeyboard(links); kb != nil {
		params.ReplyMarkup = kb
	}
	return params
}
