// Package bridge fans broadcast payloads out across server instances using
// Redis pub/sub. Each instance publishes its outbound broadcasts to a shared
// channel and delivers payloads received from the channel to its own live
// sessions, so a message reaches every session of every instance.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/cyberinferno/socketserver/logger"
)

// RedisBridge connects one server instance to a shared broadcast channel.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	b := bridge.NewRedisBridge(client, "broadcast", log)
//	go b.Run(ctx, func(payload []byte) { srv.Broadcast(payload) })
type RedisBridge struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewRedisBridge creates a bridge over the given Redis client and channel.
//
// Parameters:
//   - client: The Redis client to publish and subscribe with
//   - channel: The pub/sub channel shared by all instances
//   - log: Logger for delivery diagnostics; nil discards output
//
// Returns:
//   - A new RedisBridge
func NewRedisBridge(client *redis.Client, channel string, log logger.Logger) *RedisBridge {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RedisBridge{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// Publish sends one broadcast payload to the shared channel. Every
// subscribed instance, including this one, receives it.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - payload: The broadcast bytes
//
// Returns:
//   - An error if the publish fails
func (b *RedisBridge) Publish(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}

	return nil
}

// Run subscribes to the shared channel and invokes deliver for every
// payload received, until ctx is cancelled. Deliver is called from the
// subscriber goroutine; a slow deliver delays subsequent payloads.
//
// Parameters:
//   - ctx: Cancelling this context stops the bridge
//   - deliver: Called with each received payload, typically the server's
//     Broadcast
//
// Returns:
//   - nil on cancellation, or the subscription error that ended the run
func (b *RedisBridge) Run(ctx context.Context, deliver func(payload []byte)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	b.log.Info("bridge subscribed", logger.Field{Key: "channel", Value: b.channel})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for msg := range sub.Channel() {
			deliver([]byte(msg.Payload))
		}

		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if err := sub.Close(); err != nil {
			return err
		}

		return ctx.Err()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
