package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	Prefix      string
	MaxAttempts int
	Cooldown    time.Duration
	PerIP       bool
}

// Limiter enforces per-user-name and per-IP budgets for failed sign-ins
// using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client. An empty prefix
// defaults to "gg".
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "gg"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check reports ErrRateLimited when the user name or IP has exhausted its
// budget. It does not consume an attempt.
func (l *Limiter) Check(ctx context.Context, userName, ip string) error {
	if err := l.checkCounter(ctx, l.userKey(userName)); err != nil {
		return err
	}
	if l.config.PerIP && ip != "" {
		if err := l.checkCounter(ctx, l.ipKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure counts a failed sign-in against the user name and, with
// PerIP, the client IP. Both counters advance even when one is already
// exhausted. It returns ErrRateLimited when either budget is used up.
func (l *Limiter) RecordFailure(ctx context.Context, userName, ip string) error {
	userCount, err := l.incrementWithTTL(ctx, l.userKey(userName))
	if err != nil {
		return err
	}

	var ipCount int64
	if l.config.PerIP && ip != "" {
		ipCount, err = l.incrementWithTTL(ctx, l.ipKey(ip))
		if err != nil {
			return err
		}
	}

	limit := int64(l.config.MaxAttempts)
	if userCount >= limit || ipCount >= limit {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the user name counter after a successful sign-in. The IP
// counter is left to expire so one good account cannot unlock an IP.
func (l *Limiter) Reset(ctx context.Context, userName string) error {
	if err := l.redis.Del(ctx, l.userKey(userName)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failure count for a user name. Missing keys return
// zero.
func (l *Limiter) Attempts(ctx context.Context, userName string) (int, error) {
	count, err := l.redis.Get(ctx, l.userKey(userName)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the TTL is only set on the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func (l *Limiter) userKey(userName string) string {
	return l.config.Prefix + ":rl:u:" + strings.ToLower(strings.TrimSpace(userName))
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.Prefix + ":rl:ip:" + ip
}
