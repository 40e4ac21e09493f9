// Package cli implements the mediagrab commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/spf13/cobra"
)

var envFile string

// RootCmd is the top-level command. Without a subcommand it runs the bot.
var RootCmd = &cobra.Command{
	Use:   "mediagrab",
	Short: "Telegram bot that fetches media from links",
	Long:  "Send a link, pick a format (video, audio, voice note, thumbnail), get the file back in the chat.",
	RunE:  runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before the environment (ignored when APP_ENV=production)")
}

// loadConfig reads the env file in development, then parses the environment.
func loadConfig() (*config.Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return config.Load()
}

func setupLogger(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
