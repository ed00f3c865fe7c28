package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventara/events-cli/internal/engine"
)

var (
	scrapeSource       string
	scrapeMaxPages     int
	scrapeFetchDetails bool
	scrapeSkipGeocode  bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a scrape pass over one source or all of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := engine.Options{
			MaxPages:     scrapeMaxPages,
			FetchDetails: scrapeFetchDetails,
			SkipGeocode:  scrapeSkipGeocode,
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if scrapeSource != "" {
			result := env.Engine.RunSource(ctx, scrapeSource, opts)
			return enc.Encode(result)
		}
		summary := env.Engine.RunAll(ctx, opts)
		return enc.Encode(summary)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "", "scrape a single source (default all)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "page cap per source (default from config)")
	scrapeCmd.Flags().BoolVar(&scrapeFetchDetails, "details", false, "sample event detail pages for richer addresses")
	scrapeCmd.Flags().BoolVar(&scrapeSkipGeocode, "skip-geocode", false, "persist without coordinate resolution")
	rootCmd.AddCommand(scrapeCmd)
}
