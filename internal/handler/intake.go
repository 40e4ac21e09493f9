package handler

import (
	"context"

	"github.com/set-night/mediagrab/internal/middleware"
	"github.com/set-night/mediagrab/internal/telegram"
)

// handleURL resolves a link and offers the variant choice. A session is only
// created once the preview is on screen; a previous pending session for the
// same key is replaced.
func (h *Handler) handleURL(ctx context.Context, ev Event) {
	log := middleware.Logger(ctx).With("user_id", ev.Key.UserID, "chat_id", ev.Key.ChatID)
	chatID := ev.Key.ChatID

	var statusID int
	if status, err := telegram.SendText(ctx, h.transport, chatID, textResolving); err == nil {
		statusID = status.ID
	}

	meta, err := h.resolver.Resolve(ctx, ev.URL)
	if err != nil {
		log.Info("metadata unresolved", "url", ev.URL, "error", err)
		telegram.EditText(ctx, h.transport, chatID, statusID, textUnresolved)
		return
	}

	preview, err := telegram.SendPreview(ctx, h.transport, chatID, *meta, telegram.VariantKeyboard(h.links))
	if err != nil {
		log.Error("send preview failed", "error", err)
		telegram.EditText(ctx, h.transport, chatID, statusID, textPreviewFailed)
		return
	}
	telegram.DeleteMessages(ctx, h.transport, chatID, []int{statusID})

	sess, replaced := h.sessions.Create(ev.Key, ev.URL, *meta, []int{preview.ID})
	if replaced != nil {
		telegram.DeleteMessages(ctx, h.transport, chatID, replaced.MessageIDs)
	}

	log.Info("session created", "session_id", sess.ID, "url", ev.URL, "title", meta.Title)
}
