package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
)

// SendText sends a plain text message.
func SendText(ctx context.Context, t Transport, chatID int64, text string) (*models.Message, error) {
	return t.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   Truncate(text, config.MaxTelegramMessageLen),
	})
}

// EditText replaces the text of a status message. When the message cannot be
// edited (deleted, too old) the text is sent as a new message instead.
func EditText(ctx context.Context, t Transport, chatID int64, messageID int, text string) {
	text = Truncate(text, config.MaxTelegramMessageLen)
	if messageID != 0 {
		_, err := t.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
		})
		if err == nil {
			return
		}
		slog.Debug("edit status message failed, sending new one", "chat_id", chatID, "error", err)
	}
	if _, err := SendText(ctx, t, chatID, text); err != nil {
		slog.Warn("send status message failed", "chat_id", chatID, "error", err)
	}
}

// DeleteMessages removes messages shown for a session. Failures are logged only.
func DeleteMessages(ctx context.Context, t Transport, chatID int64, messageIDs []int) {
	for _, id := range messageIDs {
		if id == 0 {
			continue
		}
		if _, err := t.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: id,
		}); err != nil {
			slog.Debug("delete message failed", "chat_id", chatID, "message_id", id, "error", err)
		}
	}
}

// SendPreview shows resolved metadata with the variant keyboard, as a photo when
// a thumbnail URL is known and as text otherwise.
func SendPreview(ctx context.Context, t Transport, chatID int64, meta domain.Metadata, keyboard models.ReplyMarkup) (*models.Message, error) {
	caption := PreviewCaption(meta)
	if meta.ThumbnailURL != "" {
		msg, err := t.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &models.InputFileString{Data: meta.ThumbnailURL},
			Caption:     caption,
			ReplyMarkup: keyboard,
		})
		if err == nil {
			return msg, nil
		}
		slog.Warn("failed to send preview photo, falling back to text", "chat_id", chatID, "error", err)
	}
	return t.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        caption,
		ReplyMarkup: keyboard,
	})
}

// ChatActionFor is the "uploading ..." indicator matching a variant.
func ChatActionFor(v domain.Variant) models.ChatAction {
	switch v {
	case domain.VariantVideo:
		return models.ChatActionUploadVideo
	case domain.VariantVoice:
		return models.ChatActionUploadVoice
	case domain.VariantThumbnail:
		return models.ChatActionUploadPhoto
	default:
		return models.ChatActionUploadDocument
	}
}

// StartChatAction sends action every few seconds until the returned cancel function is called.
func StartChatAction(ctx context.Context, t Transport, chatID int64, action models.ChatAction) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(config.ChatActionInterval)
		defer ticker.Stop()
		// Send immediately
		t.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: action,
		})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID: chatID,
					Action: action,
				})
			}
		}
	}()
	return cancel
}
