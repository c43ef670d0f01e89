// Package ratelimit bounds failed login attempts per email in Redis.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-service/internal/config"
)

const keyPrefix = "login_attempts:"

// LoginLimiter counts failed logins per email in a fixed window. Redis errors
// fail open: a broken limiter never locks users out.
type LoginLimiter struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter builds a limiter over client.
func NewLoginLimiter(client redis.Cmdable, cfg config.LoginLimiterConfig, logger *zap.Logger) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		maxAttempts: int64(cfg.MaxAttempts),
		window:      cfg.Window(),
		logger:      logger,
	}
}

// Allow reports whether another attempt for email is permitted.
func (l *LoginLimiter) Allow(ctx context.Context, email string) bool {
	count, err := l.client.Get(ctx, key(email)).Int64()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		l.logger.Warn("login limiter unavailable; allowing attempt", zap.Error(err))
		return true
	}
	return count < l.maxAttempts
}

// RecordFailure counts one failed attempt. The window starts at the first
// failure; the key and its TTL are created in the same transaction so a
// counter can never outlive its window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	k := key(email)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetArgs(ctx, k, 0, redis.SetArgs{Mode: "NX", TTL: l.window})
		incr = pipe.Incr(ctx, k)
		return nil
	})
	// SET NX answers nil once the window is open.
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Warn("login limiter increment failed", zap.Error(err))
		return
	}
	if err := incr.Err(); err != nil {
		l.logger.Warn("login limiter increment failed", zap.Error(err))
	}
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if err := l.client.Del(ctx, key(email)).Err(); err != nil {
		l.logger.Warn("login limiter reset failed", zap.Error(err))
	}
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Noop allows every attempt. Used when the limiter is disabled.
type Noop struct{}

func (Noop) Allow(context.Context, string) bool    { return true }
func (Noop) RecordFailure(context.Context, string) {}
func (Noop) Reset(context.Context, string)         {}
