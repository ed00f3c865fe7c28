package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "events-cli",
	Short: "Croatian event ingestion pipeline",
	Long:  "Scrapes Croatian event listing sites, normalizes locale-specific dates and venues, geocodes locations, and persists deduplicated events.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
