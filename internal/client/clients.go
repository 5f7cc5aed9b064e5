package client

import (
	"context"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Clients interface {
	RabbitMQClient() RabbitClient
	Redis() *redis.Client
	Mailer() Mailer

	Close()
}

type clients struct {
	rabbitClient RabbitClient
	redisClient  *redis.Client
	mailer       Mailer
}

func (c clients) RabbitMQClient() RabbitClient {
	return c.rabbitClient
}

func (c clients) Redis() *redis.Client {
	return c.redisClient
}

func (c clients) Mailer() Mailer {
	return c.mailer
}

func (c clients) Close() {
	if c.rabbitClient != nil {
		if err := c.rabbitClient.Close(); err != nil {
			logrus.Errorf("Error closing RabbitMQ client: %v", err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			logrus.Errorf("Error closing Redis client: %v", err)
		}
	}
}

func NewClients(cfg dto.Config) Clients {
	// A missing broker is survivable: the zone broker falls back to
	// in-process fan-out and the instance runs standalone.
	rabbitClient, err := NewRabbitMQClient(cfg)
	if err != nil {
		logrus.Errorf("Failed to connect to RabbitMQ, running without cross-instance fan-out: %v", err)
		rabbitClient = nil
	}

	redisClient, err := NewRedisClient(context.Background(), cfg)
	if err != nil {
		logrus.Panic(err)
	}

	return &clients{
		rabbitClient: rabbitClient,
		redisClient:  redisClient,
		mailer:       NewMailer(cfg),
	}
}
