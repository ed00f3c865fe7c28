package jobs

import (
	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Dial connects to a Temporal server.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, eris.Wrap(err, "jobs: dial temporal")
	}
	return c, nil
}

// NewWorker registers the scrape workflows and activities on the given task
// queue. The caller runs it with worker.Run or Start.
func NewWorker(c client.Client, taskQueue string, acts *Activities) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(ScrapeSourceWorkflow)
	w.RegisterWorkflow(ScrapeAllWorkflow)
	w.RegisterActivity(acts.ScrapeSource)
	w.RegisterActivity(acts.ScrapeAll)
	return w
}
