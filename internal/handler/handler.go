package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/middleware"
	"github.com/set-night/mediagrab/internal/service"
	"github.com/set-night/mediagrab/internal/storage"
	"github.com/set-night/mediagrab/internal/telegram"
	"github.com/set-night/mediagrab/internal/worker"
)

// Resolver looks up metadata for a URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*domain.Metadata, error)
}

// Handler routes inbound updates and runs the per-session pipeline.
type Handler struct {
	transport  telegram.Transport
	cfg        *config.Config
	sessions   *service.SessionStore
	resolver   Resolver
	downloader *service.Downloader
	delivery   *telegram.Delivery
	artifacts  *storage.ArtifactStore
	dispatcher *worker.Dispatcher[domain.SessionKey]
	tgLogger   *telegram.TelegramLogger
	links      telegram.Links
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Transport  telegram.Transport
	Cfg        *config.Config
	Sessions   *service.SessionStore
	Resolver   Resolver
	Downloader *service.Downloader
	Artifacts  *storage.ArtifactStore
	Dispatcher *worker.Dispatcher[domain.SessionKey]
	TgLogger   *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		transport:  deps.Transport,
		cfg:        deps.Cfg,
		sessions:   deps.Sessions,
		resolver:   deps.Resolver,
		downloader: deps.Downloader,
		delivery:   telegram.NewDelivery(deps.Transport, deps.Downloader),
		artifacts:  deps.Artifacts,
		dispatcher: deps.Dispatcher,
		tgLogger:   deps.TgLogger,
		links: telegram.Links{
			Support: deps.Cfg.SupportURL,
			Channel: deps.Cfg.ChannelURL,
		},
	}
}

// HandleUpdate is the bot's default handler: every update enters here.
func (h *Handler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	h.Dispatch(ctx, update)
}

// Dispatch classifies an update and routes it. Slow work is queued on the
// session's worker so the caller returns immediately.
func (h *Handler) Dispatch(ctx context.Context, update *models.Update) {
	ev := Classify(update)
	requestID := middleware.RequestID(ctx)

	switch ev.Kind {
	case EventCommand:
		h.handleCommand(ctx, ev)
	case EventURL:
		h.submit(ev.Key, requestID, func(ctx context.Context) { h.handleURL(ctx, ev) })
	case EventChoice:
		h.answerCallback(ctx, ev.CallbackID)
		h.submit(ev.Key, requestID, func(ctx context.Context) { h.handleChoice(ctx, ev) })
	case EventText:
		telegram.SendText(ctx, h.transport, ev.Key.ChatID, textSendLink)
	case EventUnknownChoice:
		h.answerCallback(ctx, ev.CallbackID)
		if ev.Key.ChatID != 0 {
			telegram.SendText(ctx, h.transport, ev.Key.ChatID, textSessionMissing)
		}
	}
}

// Stats reports pipeline counters for /stats and the HTTP endpoint.
func (h *Handler) Stats() domain.Stats {
	keys, running := h.dispatcher.Stats()
	files, bytes, _ := h.artifacts.Usage()
	return domain.Stats{
		Sessions:     h.sessions.Len(),
		QueuedKeys:   keys,
		RunningTasks: running,
		InFlight:     h.downloader.InFlight(),
		DiskFiles:    files,
		DiskBytes:    bytes,
	}
}

func (h *Handler) submit(key domain.SessionKey, requestID string, task worker.Task) {
	h.dispatcher.Submit(key, func(ctx context.Context) {
		if requestID != "" {
			ctx = middleware.WithRequestID(ctx, requestID)
		}
		task(ctx)
	})
}

func (h *Handler) answerCallback(ctx context.Context, id string) {
	if id == "" {
		return
	}
	h.transport.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: id})
}
