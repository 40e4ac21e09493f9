package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/engine"
	"github.com/set-night/mediagrab/internal/handler"
	"github.com/set-night/mediagrab/internal/httpapi"
	"github.com/set-night/mediagrab/internal/middleware"
	"github.com/set-night/mediagrab/internal/service"
	"github.com/set-night/mediagrab/internal/storage"
	"github.com/set-night/mediagrab/internal/telegram"
	"github.com/set-night/mediagrab/internal/worker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireBotToken(); err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifacts := storage.NewArtifactStore(cfg.DownloadDir)
	if err := artifacts.EnsureDir(); err != nil {
		return err
	}

	eng, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}

	cookies := service.NewCookieSelector(cfg.CookiesDir)
	resolver := service.NewMetadataResolver(eng, cookies, service.NewPreviewScraper(), cfg.MetadataTimeout)
	downloader := service.NewDownloader(eng, cookies, artifacts, telegram.NewThumbnailFetcher(), service.DownloaderOptions{
		MaxAttempts: config.MaxAttempts,
		MaxFileSize: config.MaxFileSize,
		RetryDelay:  cfg.RetryDelay,
	})
	sessions := service.NewSessionStore()
	dispatcher := worker.New[domain.SessionKey](ctx, cfg.MaxWorkers)
	limiter := middleware.NewRateLimiter(config.RateLimitPerMinute, time.Minute)

	// Set once the bot exists; both are read from closures below
	var (
		h        *handler.Handler
		tgLogger *telegram.TelegramLogger
	)

	b, err := bot.New(cfg.BotToken,
		bot.WithMiddlewares(
			middleware.Logging(),
			middleware.Recover(func(err error, where string) {
				tgLogger.LogError(err, where)
			}),
			middleware.RateLimit(limiter),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleUpdate(ctx, b, update)
		}),
		bot.WithErrorsHandler(func(err error) {
			slog.Warn("telegram polling error", "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates failed", "error", err)
		}
	}

	tgLogger = telegram.NewTelegramLogger(b, cfg)
	h = handler.New(handler.Deps{
		Transport:  b,
		Cfg:        cfg,
		Sessions:   sessions,
		Resolver:   resolver,
		Downloader: downloader,
		Artifacts:  artifacts,
		Dispatcher: dispatcher,
		TgLogger:   tgLogger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting bot", "username", me.Username, "workers", cfg.MaxWorkers, "admins", cfg.AdminIDsString())
		b.Start(gctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(config.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				h.SweepExpired(gctx)
				limiter.Prune()
			}
		}
	})

	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			return httpapi.Serve(gctx, cfg.HTTPAddr, h)
		})
	}

	err = g.Wait()
	dispatcher.Wait()
	slog.Info("bot stopped gracefully")
	return err
}

func newEngine(ctx context.Context, cfg *config.Config) (*engine.YTDLP, error) {
	if cfg.YtdlpPath == "" && cfg.YtdlpAutoInstall {
		return engine.Install(ctx)
	}
	return engine.New(cfg.YtdlpPath), nil
}
