// Package notify carries alert emails from a committed state transition to
// the SMTP boundary. The dispatcher enqueues after commit; a worker drains
// the queue, so a slow or failing mail server can never hold up or roll back
// an evacuation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/redis/go-redis/v9"
)

const emailQueueKey = "evac_alert_emails"

type EmailJob struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	UserID   uint      `json:"userId"`
	ZoneID   uint      `json:"zoneId"`
	QueuedAt time.Time `json:"queuedAt"`
}

type Publisher interface {
	Publish(ctx context.Context, job EmailJob) error
}

type redisPublisher struct {
	redisClient *redis.Client
}

func NewRedisPublisher(redisClient *redis.Client) Publisher {
	return &redisPublisher{
		redisClient: redisClient,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, job EmailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: marshaling email job: %v", dto.ErrDelivery, err)
	}

	if err := p.redisClient.LPush(ctx, emailQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("%w: enqueuing email job: %v", dto.ErrDelivery, err)
	}
	return nil
}
