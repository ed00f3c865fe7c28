package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode [venue name]",
	Short: "Resolve a venue name to coordinates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Resolver == nil {
			return eris.New("geocoding disabled: EVENTS_MAPBOX_TOKEN not set")
		}

		name := args[0]
		hint := ""
		if len(args) > 1 {
			hint = args[1]
		}

		result, err := env.Resolver.Resolve(ctx, name, hint)
		if err != nil {
			return err
		}
		if result == nil {
			return eris.Errorf("no usable result for %q", name)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var geocodeBackfillLimit int

var geocodeBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Resolve coordinates for stored events that are missing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Resolver == nil {
			return eris.New("geocoding disabled: EVENTS_MAPBOX_TOKEN not set")
		}

		events, err := env.Store.ListEventsMissingCoordinates(ctx, geocodeBackfillLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			zap.L().Info("no events missing coordinates")
			return nil
		}

		updated := 0
		for _, ev := range events {
			result, err := env.Resolver.Resolve(ctx, ev.Location, "")
			if err != nil || result == nil {
				continue
			}
			if err := env.Store.UpdateEventCoordinates(ctx, ev.ID, result.Latitude, result.Longitude); err != nil {
				zap.L().Warn("coordinate update failed",
					zap.String("event_id", ev.ID),
					zap.Error(err),
				)
				continue
			}
			updated++
		}

		zap.L().Info("backfill complete",
			zap.Int("candidates", len(events)),
			zap.Int("updated", updated),
		)
		return nil
	},
}

func init() {
	geocodeBackfillCmd.Flags().IntVar(&geocodeBackfillLimit, "limit", 100, "max events to backfill")
	geocodeCmd.AddCommand(geocodeBackfillCmd)
	rootCmd.AddCommand(geocodeCmd)
}
