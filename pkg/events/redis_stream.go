package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"studyhub/pkg/domain"
)

const defaultStreamMaxLen = 10000

// RedisStreamPublisher appends activity events to a Redis stream. It is the
// lighter-weight alternative to RabbitMQ for deployments that already run
// Redis: consumers read the stream with consumer groups.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisStreamConfig configures the stream publisher. MaxLen caps the stream
// with approximate trimming; zero means the default of 10000 entries.
type RedisStreamConfig struct {
	Addr     string
	Password string
	Stream   string
	MaxLen   int64
}

func NewRedisStreamPublisher(cfg RedisStreamConfig) (*RedisStreamPublisher, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		return nil, errors.New("stream name required")
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &RedisStreamPublisher{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream: stream,
		maxLen: maxLen,
	}, nil
}

// PublishActivity appends one stream entry per activity with the JSON body
// under "payload" and the type duplicated as a field for cheap filtering.
func (p *RedisStreamPublisher) PublishActivity(ctx context.Context, a domain.Activity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":    string(a.Type),
			"payload": string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}
