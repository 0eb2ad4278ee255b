package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBridge fans topic notifications out across service instances through
// a single Redis pub/sub channel. Locally published topics go to Redis; the
// receive loop re-injects every received topic into the local hub, including
// our own, so local subscribers are served through the same path.
type RedisBridge struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
	cancel  context.CancelFunc
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

func NewRedisBridge(cfg RedisConfig, hub *Hub) *RedisBridge {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisBridge{
		rdb:     rdb,
		hub:     hub,
		channel: cfg.Channel,
	}
}

func (b *RedisBridge) Publish(topic string) {
	err := b.rdb.Publish(context.Background(), b.channel, topic).Err()
	if err != nil {
		slog.Error("publish watch topic to redis", "error", err, "topic", topic)
		// Still deliver locally so this instance's subscribers see the change.
		b.hub.Publish(topic)
	}
}

// Run starts the receive loop. It returns once the subscription is
// established; the loop stops when Close is called.
func (b *RedisBridge) Run(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to watch channel: %w", err)
	}

	go func() {
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.hub.Publish(msg.Payload)
			}
		}
	}()

	return nil
}

func (b *RedisBridge) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.rdb.Close()
}
