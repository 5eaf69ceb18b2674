package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
)

// EventsChannel is the redis pub/sub channel fanned out to websocket clients.
const EventsChannel = "quiz_events"

type Publisher interface {
	Publish(ctx context.Context, msg models.WSMessage)
}

// RedisPublisher sends events over redis pub/sub. Publishing is best effort.
type RedisPublisher struct {
	redis *redis.Client
	log   *logger.Logger
}

func NewRedisPublisher(client *redis.Client, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{redis: client, log: log.With("component", "publisher")}
}

func (p *RedisPublisher) Publish(ctx context.Context, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn("marshal event", "type", msg.Type, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, EventsChannel, string(data)).Err(); err != nil {
		p.log.Warn("publish event", "type", msg.Type, "error", err)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.WSMessage) {}

// NopPublisher discards events; used when redis is not configured.
func NopPublisher() Publisher { return nopPublisher{} }
