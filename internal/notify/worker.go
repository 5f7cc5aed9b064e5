package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/evacgrid/backend/internal/client"
	"github.com/evacgrid/backend/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Worker drains the email queue and hands jobs to the mailer with retries.
type Worker struct {
	redisClient *redis.Client
	mailer      client.Mailer
	cfg         dto.Config
}

func NewWorker(redisClient *redis.Client, mailer client.Mailer, cfg dto.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		mailer:      mailer,
		cfg:         cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	logrus.Info("Starting alert email worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				logrus.Info("Stopping alert email worker.")
				return
			default:
				result, err := w.redisClient.BRPop(ctx, 0, emailQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					logrus.Errorf("Failed to pop email job from Redis: %v", err)
					time.Sleep(w.cfg.MailRetryDelay)
					continue
				}

				// result[0] is the key, result[1] the payload
				var job EmailJob
				if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
					logrus.Errorf("Failed to unmarshal email job: %v", err)
					continue
				}

				w.deliver(ctx, job)
			}
		}
	}()
}

func (w *Worker) deliver(ctx context.Context, job EmailJob) {
	log := logrus.WithFields(logrus.Fields{
		"to":     job.To,
		"userId": job.UserID,
		"zoneId": job.ZoneID,
	})

	delay := w.cfg.MailRetryDelay
	for attempt := 0; attempt < w.cfg.MailMaxRetries; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, w.cfg.RepoTimeout)
		err := w.mailer.Send(sendCtx, job.To, job.Subject, job.Body)
		cancel()
		if err == nil {
			log.Info("Alert email delivered")
			return
		}

		log.WithError(err).Warnf("Alert email delivery failed, retrying in %v", delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}

	log.Errorf("Giving up on alert email after %d attempts", w.cfg.MailMaxRetries)
}
