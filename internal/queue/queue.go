package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/elevohq/elevo-backend/internal/apperr"
)

const recommendationQueueKey = "elevo:jobs:recommendations"

// RecommendationJob is the unit of work produced at plan creation and
// consumed at-least-once by the worker.
type RecommendationJob struct {
	EmployeeID uuid.UUID `json:"employeeId"`
	PlanID     uuid.UUID `json:"planId"`
}

type Publisher interface {
	Enqueue(ctx context.Context, job RecommendationJob) error
}

type redisPublisher struct {
	rdb *goredis.Client
}

func NewPublisher(rdb *goredis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Enqueue(ctx context.Context, job RecommendationJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: encode job: %v", apperr.ErrQueue, err)
	}
	if err := p.rdb.LPush(ctx, recommendationQueueKey, raw).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrQueue, err)
	}
	return nil
}
