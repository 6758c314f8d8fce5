package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channelPrefix = "slot-reservation:changes:"

// RedisBroker fans notifications out through Redis pub/sub so every API
// instance sees writes made by the others.
type RedisBroker struct {
	client    *redis.Client
	done      chan struct{}
	closeOnce sync.Once
}

// NewRedisBroker wraps an existing client. The caller keeps ownership of the
// client unless Close is called.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, done: make(chan struct{})}
}

// Publish sends a notification on the topic's channel.
func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, channelPrefix+topic, "changed").Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a Redis subscription and forwards its messages until ctx is done.
// It returns only after Redis confirmed the subscription, so a Publish issued
// after Subscribe returns is never missed.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (<-chan struct{}, error) {
	sub := b.client.Subscribe(ctx, channelPrefix+topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan struct{}, 1)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				log.Debug().Err(err).Str("topic", topic).Msg("closing redis subscription")
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				notify(out)
			}
		}
	}()
	return out, nil
}

// Close ends every open subscription and closes the underlying client.
func (b *RedisBroker) Close() error {
	err := redis.ErrClosed
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.client.Close()
	})
	return err
}
