package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventara/events-cli/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the in-process timer triggers (daily deep, hourly shallow)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		s := schedule.New(env.Engine, schedule.Config{
			DailyHour:      cfg.Schedule.DailyHour,
			DailyMaxPages:  cfg.Schedule.DailyMaxPages,
			HourlyInterval: time.Hour,
			HourlyMaxPages: cfg.Schedule.HourlyMaxPages,
		})
		s.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
