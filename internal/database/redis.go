package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps PDF job traffic apart from quiz event fan-out. Every
// worker parks a connection in BLPOP on the jobs list, so sharing one pool
// with pub/sub would let a busy queue starve live events.
type RedisClients struct {
	// Jobs carries the PDF job list (LPUSH/BLPOP) and per-job locks.
	Jobs *redis.Client
	// Events carries the quiz_events pub/sub channel.
	Events *redis.Client
}

// jobsPoolSize leaves room for enqueues and locks next to one blocked BLPOP
// per worker.
func jobsPoolSize(workers int) int {
	if workers < 1 {
		workers = 1
	}
	return workers + 4
}

func NewRedisClients(redisURL string, workers int) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobsOpt := *opt
	jobsOpt.ClientName = "flashquiz-jobs"
	current := jobsOpt.PoolSize
	if current == 0 {
		current = 10 * runtime.GOMAXPROCS(0) // go-redis default
	}
	if size := jobsPoolSize(workers); current < size {
		jobsOpt.PoolSize = size
	}
	jobs := redis.NewClient(&jobsOpt)
	if err := jobs.Ping(ctx).Err(); err != nil {
		jobs.Close()
		return nil, fmt.Errorf("failed to ping Redis (jobs): %w", err)
	}

	eventsOpt := *opt
	eventsOpt.ClientName = "flashquiz-events"
	events := redis.NewClient(&eventsOpt)
	if err := events.Ping(ctx).Err(); err != nil {
		jobs.Close()
		events.Close()
		return nil, fmt.Errorf("failed to ping Redis (events): %w", err)
	}

	return &RedisClients{Jobs: jobs, Events: events}, nil
}

func (r *RedisClients) Close() error {
	return errors.Join(r.Jobs.Close(), r.Events.Close())
}
