package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/middleware"
	"github.com/set-night/mediagrab/internal/service"
	"github.com/set-night/mediagrab/internal/telegram"
)

// handleChoice runs the chosen variant to a terminal outcome. Whatever happens
// the session is destroyed and no artifact files remain afterwards.
func (h *Handler) handleChoice(ctx context.Context, ev Event) {
	log := middleware.Logger(ctx).With("user_id", ev.Key.UserID, "chat_id", ev.Key.ChatID, "variant", ev.Variant)
	chatID := ev.Key.ChatID

	sess, ok := h.sessions.Get(ev.Key)
	if !ok || sess.State != domain.StateAwaitingFormat || sess.Expired(time.Now(), h.cfg.SessionTTL) {
		log.Info("choice without pending session")
		telegram.SendText(ctx, h.transport, chatID, textSessionMissing)
		return
	}
	defer h.sessions.DestroyIf(ev.Key, sess.ID)

	if err := h.sessions.Update(ev.Key, func(s *domain.Session) {
		s.State = domain.StateResolving
		s.Variant = ev.Variant
	}); err != nil {
		log.Warn("session vanished before choice", "error", err)
		return
	}

	telegram.DeleteMessages(ctx, h.transport, chatID, sess.MessageIDs)

	var statusID int
	if status, err := telegram.SendText(ctx, h.transport, chatID, textDownloading); err == nil {
		statusID = status.ID
	}

	req := service.DownloadRequest{
		ChatID:   chatID,
		URL:      sess.URL,
		Metadata: sess.Metadata,
		Variant:  ev.Variant,
	}

	unlock := h.downloader.Lock(req)
	defer unlock()
	// Covers panics between production and delivery.
	defer h.downloader.Cleanup(req.BaseName())

	stopAction := telegram.StartChatAction(ctx, h.transport, chatID, telegram.ChatActionFor(ev.Variant))
	defer stopAction()

	dlCtx, cancel := context.WithTimeout(ctx, h.cfg.DownloadTimeout)
	art, err := h.downloader.Download(dlCtx, req)
	cancel()
	if err != nil {
		log.Warn("pipeline failed", "session_id", sess.ID, "error", err)
		telegram.EditText(ctx, h.transport, chatID, statusID, downloadFailureText(err))
		h.tgLogger.LogError(err, fmt.Sprintf("download %s for %s", ev.Variant, ev.Key))
		return
	}

	telegram.EditText(ctx, h.transport, chatID, statusID, textUploading)

	err = h.delivery.Deliver(ctx, telegram.Parcel{
		ChatID:   chatID,
		Base:     req.BaseName(),
		Artifact: art,
		Metadata: sess.Metadata,
	})
	if err != nil {
		log.Error("delivery failed", "session_id", sess.ID, "error", err)
		telegram.EditText(ctx, h.transport, chatID, statusID, textDeliveryFailed)
		h.tgLogger.LogError(err, fmt.Sprintf("deliver %s for %s", ev.Variant, ev.Key))
		return
	}

	telegram.DeleteMessages(ctx, h.transport, chatID, []int{statusID})
	log.Info("delivered", "session_id", sess.ID, "size", art.Size, "attempts", art.Attempts, "reused", art.Reused)
	h.tgLogger.LogDownload(ev.Key, sess.URL, art)
}

func downloadFailureText(err error) string {
	var dlErr *domain.DownloadError
	switch {
	case errors.Is(err, domain.ErrSizeExceeded) && errors.As(err, &dlErr):
		return fmt.Sprintf(textTooLarge, float64(dlErr.Size)/(1<<20), config.MaxFileSize>>20)
	case errors.As(err, &dlErr):
		return fmt.Sprintf(textFailed, dlErr.Attempts)
	default:
		return fmt.Sprintf(textFailed, config.MaxAttempts)
	}
}
