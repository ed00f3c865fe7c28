package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	correctionStatus      string
	correctionLat         float64
	correctionLon         float64
	correctionCoords      bool
	correctionSubmittedBy string
)

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "List venue corrections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		corrections, err := env.Venues.ListCorrections(ctx, correctionStatus)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(corrections)
	},
}

var correctionsAddCmd = &cobra.Command{
	Use:   "add [original] [corrected]",
	Short: "Record a venue correction for review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var lat, lon *float64
		if correctionCoords {
			lat, lon = &correctionLat, &correctionLon
		}

		c, err := env.Venues.RecordCorrection(ctx, args[0], args[1], correctionSubmittedBy, lat, lon)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	correctionsCmd.Flags().StringVar(&correctionStatus, "status", "", "filter by status (pending, approved, rejected)")
	correctionsAddCmd.Flags().Float64Var(&correctionLat, "lat", 0, "corrected latitude")
	correctionsAddCmd.Flags().Float64Var(&correctionLon, "lon", 0, "corrected longitude")
	correctionsAddCmd.Flags().BoolVar(&correctionCoords, "coords", false, "include --lat/--lon in the correction")
	correctionsAddCmd.Flags().StringVar(&correctionSubmittedBy, "by", "", "submitter")
	correctionsCmd.AddCommand(correctionsAddCmd)
	rootCmd.AddCommand(correctionsCmd)
}
