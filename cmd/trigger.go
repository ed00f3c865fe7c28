package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/jobs"
)

var (
	triggerSource   string
	triggerMaxPages int
	triggerDetails  bool
	triggerCron     string
	triggerID       string
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start a scrape workflow on the Temporal task queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := jobs.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			return err
		}
		defer c.Close()

		in := jobs.ScrapeInput{
			Source:       triggerSource,
			MaxPages:     triggerMaxPages,
			FetchDetails: triggerDetails,
		}

		workflowID := triggerID
		if workflowID == "" {
			if triggerSource != "" {
				workflowID = "scrape-" + triggerSource
			} else {
				workflowID = "scrape-all"
			}
		}

		opts := jobs.StartOptions(cfg.Temporal.TaskQueue, workflowID, triggerCron)

		var run client.WorkflowRun
		if triggerSource != "" {
			run, err = c.ExecuteWorkflow(ctx, opts, jobs.ScrapeSourceWorkflow, in)
		} else {
			run, err = c.ExecuteWorkflow(ctx, opts, jobs.ScrapeAllWorkflow, in)
		}
		if err != nil {
			return eris.Wrap(err, "start workflow")
		}

		zap.L().Info("workflow started",
			zap.String("workflow_id", run.GetID()),
			zap.String("task_queue", cfg.Temporal.TaskQueue),
			zap.String("cron", triggerCron),
		)
		fmt.Println(run.GetID())
		return nil
	},
}

func init() {
	triggerCmd.Flags().StringVar(&triggerSource, "source", "", "single source to scrape (default all)")
	triggerCmd.Flags().IntVar(&triggerMaxPages, "max-pages", 0, "page cap per source")
	triggerCmd.Flags().BoolVar(&triggerDetails, "details", false, "fetch detail pages")
	triggerCmd.Flags().StringVar(&triggerCron, "cron", "", "cron schedule (empty for a one-shot run)")
	triggerCmd.Flags().StringVar(&triggerID, "workflow-id", "", "workflow id override")
	rootCmd.AddCommand(triggerCmd)
}
