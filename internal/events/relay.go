package events

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/solarflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	DefaultChannel = "solarflow.changed"
	relayMessage   = "changed"
	publishTimeout = 2 * time.Second
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay forwards every local change signal to a Redis channel so other
// replicas' observers can re-read.
type RedisRelay struct {
	client  publisher
	channel string
	log     *zap.Logger
}

func NewRedisRelay(client publisher, channel string, log *zap.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel, log: log.Named("events.relay")}
}

// Run blocks until ctx is done or the subscription is closed.
func (r *RedisRelay) Run(ctx context.Context, sub *Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C():
			if !ok {
				return
			}
			r.publish(ctx)
		}
	}
}

func (r *RedisRelay) publish(ctx context.Context) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.client.Publish(pubCtx, r.channel, relayMessage).Err(); err != nil {
		r.log.Warn("relay publish failed", zap.String("channel", r.channel), zap.Error(err))
	}
}

func registerRelay(lc fx.Lifecycle, hub *Hub, client *redis.Client, cfg config.Config, log *zap.Logger) {
	if client == nil {
		return
	}
	relay := NewRedisRelay(client, cfg.Redis.EventsChannel, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sub := hub.Subscribe()
			go func() {
				defer close(done)
				relay.Run(ctx, sub)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
