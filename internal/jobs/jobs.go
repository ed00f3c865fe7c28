// Package jobs exposes scrape runs as Temporal workflows. The worker command
// registers these on the configured task queue; cron-scheduled starts cover
// the daily deep and hourly shallow passes.
package jobs

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/eventara/events-cli/internal/engine"
	"github.com/eventara/events-cli/internal/model"
)

// ScrapeInput selects what to scrape. An empty Source means all sources.
type ScrapeInput struct {
	Source       string `json:"source,omitempty"`
	MaxPages     int    `json:"max_pages,omitempty"`
	FetchDetails bool   `json:"fetch_details,omitempty"`
}

// Activities wraps the engine for Temporal execution.
type Activities struct {
	engine *engine.Engine
}

// NewActivities creates the activity set over the given engine.
func NewActivities(e *engine.Engine) *Activities {
	return &Activities{engine: e}
}

// ScrapeSource runs one source. A failed source surfaces as an activity
// error so the retry policy applies; overlapping retries are safe because
// persistence is idempotent on (title, date).
func (a *Activities) ScrapeSource(ctx context.Context, in ScrapeInput) (model.SourceResult, error) {
	result := a.engine.RunSource(ctx, in.Source, engine.Options{
		MaxPages:     in.MaxPages,
		FetchDetails: in.FetchDetails,
	})
	if result.Status == model.RunStatusError {
		return result, eris.Errorf("jobs: source %s failed: %s", in.Source, result.Message)
	}
	return result, nil
}

// ScrapeAll runs every registered source. Per-source failures are already
// folded into the summary, so the activity itself only fails on total loss.
func (a *Activities) ScrapeAll(ctx context.Context, in ScrapeInput) (model.RunSummary, error) {
	summary := a.engine.RunAll(ctx, engine.Options{
		MaxPages:     in.MaxPages,
		FetchDetails: in.FetchDetails,
	})
	if summary.Status == model.RunStatusError {
		return summary, eris.New("jobs: all sources failed")
	}
	return summary, nil
}

func activityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Minute,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
}

// ScrapeSourceWorkflow scrapes a single source.
func ScrapeSourceWorkflow(ctx workflow.Context, in ScrapeInput) (model.SourceResult, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	var result model.SourceResult
	err := workflow.ExecuteActivity(ctx, "ScrapeSource", in).Get(ctx, &result)
	return result, err
}

// ScrapeAllWorkflow scrapes every registered source.
func ScrapeAllWorkflow(ctx workflow.Context, in ScrapeInput) (model.RunSummary, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	var summary model.RunSummary
	err := workflow.ExecuteActivity(ctx, "ScrapeAll", in).Get(ctx, &summary)
	return summary, err
}

// StartOptions builds workflow start options for a trigger. cron may be
// empty for a one-shot run.
func StartOptions(taskQueue, workflowID, cron string) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:           workflowID,
		TaskQueue:    taskQueue,
		CronSchedule: cron,
	}
}
