// Package notify fans user changes out to other processes over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/user"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "catquest:user"

// ErrDisabled is returned by NewRedisNotifier when no Redis address is configured.
var ErrDisabled = errors.New("redis notifier disabled")

// Message is the payload published for every user change.
type Message struct {
	// Source identifies the publishing process.
	Source      string    `json:"source"`
	User        user.User `json:"user"`
	PublishedAt time.Time `json:"published_at"`
}

// RedisNotifier publishes user snapshots and delivers those from other processes.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	source  string
	logger  *zap.Logger
}

// NewRedisNotifier connects to the Redis server named by cfg.
//
// Postcondition: Returns ErrDisabled when cfg.RedisAddr is empty, a connected notifier,
// or a non-nil error when the server cannot be reached.
func NewRedisNotifier(ctx context.Context, cfg config.NotifyConfig, logger *zap.Logger) (*RedisNotifier, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrDisabled
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisNotifierFromClient(client, cfg.RedisChannel, logger), nil
}

// NewRedisNotifierFromClient wraps an existing client.
//
// Precondition: client must be non-nil.
func NewRedisNotifierFromClient(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		source:  uuid.NewString(),
		logger:  logger,
	}
}

// Source returns the id stamped on messages from this notifier.
func (n *RedisNotifier) Source() string { return n.source }

// PublishUser publishes u on the configured channel.
//
// Postcondition: Returns a non-nil error if encoding or publishing fails.
func (n *RedisNotifier) PublishUser(ctx context.Context, u user.User) error {
	payload, err := json.Marshal(Message{Source: n.source, User: u, PublishedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding user message: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing user %d: %w", u.ID, err)
	}
	n.logger.Debug("user published", zap.String("channel", n.channel), zap.Int64("user_id", u.ID))
	return nil
}

// Listen delivers user changes published by other processes to fn until ctx is done.
// Messages from this notifier and undecodable payloads are skipped.
//
// Postcondition: Returns ctx.Err() on cancellation, or the subscription error.
func (n *RedisNotifier) Listen(ctx context.Context, fn func(Message)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no publish after Listen returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", n.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				n.logger.Warn("dropping undecodable user message", zap.Error(err))
				continue
			}
			if msg.Source == n.source {
				continue
			}
			fn(msg)
		}
	}
}

// Close releases the Redis client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
