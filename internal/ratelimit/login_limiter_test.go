package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-service/internal/config"
)

func newLimiter(t *testing.T, max int) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.LoginLimiterConfig{Enabled: true, MaxAttempts: max, WindowSeconds: 900}
	return NewLoginLimiter(client, cfg, zap.NewNop()), mr
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newLimiter(t, 3)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow(ctx, "ada@example.com"), "attempt %d", i)
		limiter.RecordFailure(ctx, "ada@example.com")
	}
	assert.False(t, limiter.Allow(ctx, "ada@example.com"))
	assert.False(t, limiter.Allow(ctx, " ADA@example.com "), "key is case and space insensitive")
	assert.True(t, limiter.Allow(ctx, "bob@example.com"))
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newLimiter(t, 1)

	limiter.RecordFailure(ctx, "ada@example.com")
	require.False(t, limiter.Allow(ctx, "ada@example.com"))
	assert.Equal(t, 15*time.Minute, mr.TTL(keyPrefix+"ada@example.com"))

	mr.FastForward(16 * time.Minute)
	assert.True(t, limiter.Allow(ctx, "ada@example.com"))
}

func TestLoginLimiter_WindowStartsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newLimiter(t, 5)
	k := keyPrefix + "ada@example.com"

	limiter.RecordFailure(ctx, "ada@example.com")
	mr.FastForward(10 * time.Minute)
	limiter.RecordFailure(ctx, "ada@example.com")

	assert.Equal(t, 5*time.Minute, mr.TTL(k))
	count, err := mr.Get(k)
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	mr.FastForward(6 * time.Minute)
	assert.False(t, mr.Exists(k))
}

func TestLoginLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newLimiter(t, 1)

	limiter.RecordFailure(ctx, "ada@example.com")
	require.False(t, limiter.Allow(ctx, "ada@example.com"))

	limiter.Reset(ctx, "ada@example.com")
	assert.True(t, limiter.Allow(ctx, "ada@example.com"))
}

func TestLoginLimiter_FailsOpen(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newLimiter(t, 1)
	limiter.RecordFailure(ctx, "ada@example.com")

	mr.Close()
	assert.True(t, limiter.Allow(ctx, "ada@example.com"))
	assert.NotPanics(t, func() {
		limiter.RecordFailure(ctx, "ada@example.com")
		limiter.Reset(ctx, "ada@example.com")
	})
}

func TestNoop(t *testing.T) {
	var n Noop
	n.RecordFailure(context.Background(), "x")
	assert.True(t, n.Allow(context.Background(), "x"))
}
