package cli

import (
	"fmt"

	"github.com/set-night/mediagrab/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every file left in the download directory",
		Run:   runPurge,
	}

	RootCmd.AddCommand(cmd)
}

func runPurge(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	n, err := storage.NewArtifactStore(cfg.DownloadDir).Purge()
	if err != nil {
		exitErr("purge", err)
	}
	fmt.Printf("removed %d file(s) from %s\n", n, cfg.DownloadDir)
}
