package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	redis "github.com/redis/go-redis/v9"
)

// LogPublisher writes events to a structured logger. It is the default sink.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, payload Payload) error {
	p.logger.InfoContext(ctx, "domain event", "type", payload.EventType(), "payload", payload)
	return nil
}

// RedisClient is the part of *redis.Client used by RedisPublisher.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes JSON envelopes on a Redis pub/sub channel.
type RedisPublisher struct {
	client  RedisClient
	channel string
	timeout time.Duration
}

// NewRedisPublisher creates a RedisPublisher on the given channel.
func NewRedisPublisher(client RedisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, timeout: 2 * time.Second}
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, payload Payload) error {
	env, err := NewEnvelope(payload, time.Now())
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publishing to redis: %w", err)
	}
	return nil
}

// WebhookPublisher POSTs JSON envelopes to a fixed URL.
type WebhookPublisher struct {
	client *resty.Client
	url    string
}

// NewWebhookPublisher creates a WebhookPublisher with retries on transport errors.
func NewWebhookPublisher(url string) *WebhookPublisher {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json")
	return &WebhookPublisher{client: client, url: url}
}

// Publish implements Publisher.
func (p *WebhookPublisher) Publish(ctx context.Context, payload Payload) error {
	env, err := NewEnvelope(payload, time.Now())
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", env.Type).
		SetBody(env).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
