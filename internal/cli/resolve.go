package cli

import (
	"encoding/json"
	"fmt"

	"github.com/set-night/mediagrab/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Look up a link's metadata and print it as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runResolve,
	}

	RootCmd.AddCommand(cmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	setupLogger(cfg)

	eng, err := newEngine(cmd.Context(), cfg)
	if err != nil {
		exitErr("engine", err)
	}

	resolver := service.NewMetadataResolver(eng, service.NewCookieSelector(cfg.CookiesDir), service.NewPreviewScraper(), cfg.MetadataTimeout)
	meta, err := resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		exitErr("resolve", err)
	}

	b, _ := json.MarshalIndent(meta, "", "  ")
	fmt.Println(string(b))
}
