package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeasonsStream is the Redis stream that carries SeasonEvents.
const SeasonsStream = "seasons.parsed"

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client *redis.Client
	owned  bool
	maxLen int64
}

// NewRedisStreamPublisher creates a publisher on an existing client. The
// caller keeps ownership of the client.
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		maxLen: 10000,
	}
}

// NewRedisPublisher connects to redisURL and creates a publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	p := NewRedisStreamPublisher(client)
	p.owned = true
	return p, nil
}

// Close closes the Redis connection if the publisher opened it
func (rp *RedisPublisher) Close() error {
	if !rp.owned {
		return nil
	}
	return rp.client.Close()
}

// PublishSeasonParsed appends a season event to the seasons stream
func (rp *RedisPublisher) PublishSeasonParsed(ctx context.Context, event SeasonEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: SeasonsStream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"label":     event.Label,
			"data":      string(data),
			"timestamp": event.ParsedAt.Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing %q to %s: %w", event.Label, SeasonsStream, err)
	}
	return nil
}
