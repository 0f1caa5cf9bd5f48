package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

const redisChannelPrefix = "realtime:"

// RedisFeed fans changes out to every API instance over Redis pub/sub
type RedisFeed struct {
	client  *redis.Client
	metrics *metrics.MetricsRegistry
}

func NewRedisFeed(client *redis.Client, m *metrics.MetricsRegistry) *RedisFeed {
	return &RedisFeed{client: client, metrics: m}
}

func redisChannel(table constants.Table) string {
	return redisChannelPrefix + table.String()
}

func (f *RedisFeed) Publish(ctx context.Context, c Change) error {
	payload, err := encodeChange(c)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, redisChannel(c.Table), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change on %s: %w", c.Table, err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, table constants.Table, h Handler) (func() error, error) {
	pubsub := f.client.Subscribe(ctx, redisChannel(table))

	// wait for the subscription confirmation so no change published after
	// Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}

	msgs := pubsub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			c, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				f.metrics.RealtimeError(table.String(), "decode")
				logging.Warn("Dropping undecodable change", "table", table.String(), "error", err.Error())
				continue
			}
			h(c)
		}
	}()

	var once sync.Once
	var closeErr error
	return func() error {
		once.Do(func() {
			closeErr = pubsub.Close()
			<-done
		})
		return closeErr
	}, nil
}

func (f *RedisFeed) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

func (f *RedisFeed) Close() error {
	return f.client.Close()
}
