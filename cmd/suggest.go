package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest [location text]",
	Short: "Suggest canonical venue names for a scraped location string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		suggestions, err := env.Venues.Suggest(ctx, args[0], suggestLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	},
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 5, "max suggestions")
	rootCmd.AddCommand(suggestCmd)
}
