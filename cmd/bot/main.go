package main

import (
	"os"

	"github.com/set-night/mediagrab/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
