package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/container"
	"github.com/elevohq/elevo-backend/internal/plan"
	"github.com/elevohq/elevo-backend/internal/queue"
)

const (
	sweepInterval = 5 * time.Minute
	staleAfter    = 10 * time.Minute
)

func main() {
	c := container.New()
	log := config.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runStaleSweep(ctx, c.PlanContainer.Service)

	worker := queue.NewWorker(c.Redis, c.PlanContainer.Service)
	worker.Run(ctx)

	log.Info("Worker stopped")
}

// runStaleSweep periodically re-enqueues plans stuck in processing, so a
// lost enqueue or a crashed worker never strands a plan.
func runStaleSweep(ctx context.Context, svc plan.PlanService) {
	log := config.Logger().WithField("component", "stale_sweep")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.RequeueStaleProcessing(ctx, staleAfter); err != nil {
				log.WithError(err).Error("Stale sweep failed")
			}
		}
	}
}
