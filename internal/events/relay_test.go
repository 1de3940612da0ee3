package events

import (
	"context"
	"sync"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubPublisher struct {
	mu       sync.Mutex
	channels []string
	messages []interface{}
	notify   chan struct{}
}

func (p *stubPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.mu.Lock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message)
	p.mu.Unlock()
	p.notify <- struct{}{}
	return redis.NewIntCmd(ctx)
}

func TestRelayForwardsLocalSignals(t *testing.T) {
	hub := NewHub()
	pub := &stubPublisher{notify: make(chan struct{}, 4)}
	relay := NewRedisRelay(pub, "", zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sub := hub.Subscribe()
	go func() {
		defer close(done)
		relay.Run(ctx, sub)
	}()

	hub.Publish()

	select {
	case <-pub.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not publish")
	}

	cancel()
	<-done

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.channels, 1)
	assert.Equal(t, DefaultChannel, pub.channels[0])
	assert.Equal(t, "changed", pub.messages[0])
	assert.Equal(t, 0, hub.Subscribers())
}

func TestNilLocker(t *testing.T) {
	locker := NewLocker(nil)
	assert.Nil(t, locker)

	_, ok, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, locker.Release(context.Background(), "k", "t"))
}
