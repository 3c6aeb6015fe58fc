package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/elevohq/elevo-backend/internal/config"
)

const popTimeout = 5 * time.Second

// Handler processes one job. It must be idempotent: delivery is
// at-least-once and a failed handler leaves the plan to the stale sweep.
type Handler interface {
	HandleRecommendationJob(ctx context.Context, job RecommendationJob) error
}

type Worker struct {
	rdb     *goredis.Client
	handler Handler
}

func NewWorker(rdb *goredis.Client, handler Handler) *Worker {
	return &Worker{rdb: rdb, handler: handler}
}

// Run blocks until ctx is cancelled, consuming jobs one at a time.
func (w *Worker) Run(ctx context.Context) {
	log := config.Logger().WithField("component", "recommendation_worker")
	log.Info("Recommendation worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Recommendation worker stopping")
			return
		default:
		}

		values, err := w.rdb.BRPop(ctx, popTimeout, recommendationQueueKey).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.WithError(err).Error("Failed to pop from job queue")
			time.Sleep(time.Second)
			continue
		}
		if len(values) != 2 {
			continue
		}

		var job RecommendationJob
		if err := json.Unmarshal([]byte(values[1]), &job); err != nil {
			log.WithError(err).Error("Dropping malformed job payload")
			continue
		}

		if err := w.handler.HandleRecommendationJob(ctx, job); err != nil {
			log.WithError(err).WithField("plan_id", job.PlanID).
				Error("Job handler failed, plan left for the stale sweep")
		}
	}
}
