package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/monitoring"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackLimiter(t *testing.T, cfg Config) *RateLimiter {
	t.Helper()
	limiter := NewRateLimiter(&RedisClient{enabled: false}, cfg, monitoring.NewMetrics())
	t.Cleanup(limiter.Close)
	return limiter
}

func TestRateLimiterFallbackMode(t *testing.T) {
	limiter := newFallbackLimiter(t, DefaultConfig())

	ctx := context.Background()
	key := "test:ip:1"
	rateLimit := Rate{Limit: 5, Period: time.Minute}

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, key, rateLimit)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := limiter.Allow(ctx, key, rateLimit)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, result.RetryAfter, 12*time.Second)
}

func TestRateLimiterBurstCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BurstMultiplier = 2
	limiter := newFallbackLimiter(t, cfg)

	ctx := context.Background()
	rateLimit := Rate{Limit: 5, Period: time.Hour}

	allowedCount := 0
	for i := 0; i < 15; i++ {
		result, err := limiter.Allow(ctx, "test:burst", rateLimit)
		require.NoError(t, err)
		if result.Allowed {
			allowedCount++
		}
	}

	assert.Equal(t, 10, allowedCount)
}

func TestRateLimiterMultipleKeys(t *testing.T) {
	limiter := newFallbackLimiter(t, DefaultConfig())

	ctx := context.Background()
	rateLimit := Rate{Limit: 3, Period: time.Minute}

	for _, key := range []string{"ip:1", "ip:2", "ip:3"} {
		for i := 0; i < 3; i++ {
			result, err := limiter.Allow(ctx, key, rateLimit)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "Key %s request %d should be allowed", key, i+1)
		}

		result, err := limiter.Allow(ctx, key, rateLimit)
		require.NoError(t, err)
		assert.False(t, result.Allowed, "Key %s 4th request should be blocked", key)
	}
}

func TestRateLimiterRejectsInvalidRate(t *testing.T) {
	limiter := newFallbackLimiter(t, DefaultConfig())

	_, err := limiter.Allow(context.Background(), "k", Rate{Limit: 0, Period: time.Minute})
	assert.Error(t, err)
	_, err = limiter.Allow(context.Background(), "k", Rate{Limit: 1})
	assert.Error(t, err)
}

func TestAllowIPUsesConfiguredLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IPLimitPerMin = 2
	limiter := newFallbackLimiter(t, cfg)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, err := limiter.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	other, err := limiter.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiterStats(t *testing.T) {
	limiter := newFallbackLimiter(t, DefaultConfig())

	ctx := context.Background()
	for _, key := range []string{"a", "b", "a"} {
		_, _ = limiter.Allow(ctx, key, Rate{Limit: 5, Period: time.Minute})
	}

	stats := limiter.GetStats()
	assert.False(t, stats["redis_enabled"].(bool))
	assert.Equal(t, 2, stats["fallback_limiters"])
	assert.Equal(t, 30, stats["ip_limit_per_min"])
}

func TestRateLimiterCleanupDropsIdleLimiters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleTTL = time.Minute
	limiter := newFallbackLimiter(t, cfg)

	ctx := context.Background()
	rateLimit := Rate{Limit: 5, Period: time.Minute}
	_, _ = limiter.Allow(ctx, "stale", rateLimit)
	_, _ = limiter.Allow(ctx, "fresh", rateLimit)

	limiter.fallbackMutex.Lock()
	limiter.fallbackLimiters["stale"].lastSeen = time.Now().Add(-2 * time.Minute)
	limiter.fallbackMutex.Unlock()

	limiter.cleanup()

	limiter.fallbackMutex.Lock()
	defer limiter.fallbackMutex.Unlock()
	assert.NotContains(t, limiter.fallbackLimiters, "stale")
	assert.Contains(t, limiter.fallbackLimiters, "fresh")
}

func TestRateLimiterConcurrency(t *testing.T) {
	limiter := newFallbackLimiter(t, DefaultConfig())

	ctx := context.Background()
	rateLimit := Rate{Limit: 100, Period: time.Hour}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				result, err := limiter.Allow(ctx, "test:concurrent", rateLimit)
				assert.NoError(t, err)
				if result != nil && result.Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed, "exactly the bucket size is admitted")
}

func TestRateLimiterFallsBackWhenRedisFails(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	limiter := NewRateLimiter(&RedisClient{client: client, enabled: true, addr: "127.0.0.1:1"}, DefaultConfig(), monitoring.NewMetrics())
	t.Cleanup(limiter.Close)

	result, err := limiter.Allow(context.Background(), "k", Rate{Limit: 1, Period: time.Minute})
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Allow(context.Background(), "k", Rate{Limit: 1, Period: time.Minute})
	require.NoError(t, err)
	assert.False(t, result.Allowed, "fallback bucket is shared across calls")
}

func TestNewRedisClientDegradesGracefully(t *testing.T) {
	disabled, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	assert.False(t, disabled.IsEnabled())
	assert.Error(t, disabled.HealthCheck(context.Background()))
	assert.NoError(t, disabled.Close())
	assert.Equal(t, false, disabled.GetPoolStats()["enabled"])

	unreachable, err := NewRedisClient("127.0.0.1:1", "", 0)
	assert.Error(t, err)
	require.NotNil(t, unreachable)
	assert.False(t, unreachable.IsEnabled())

	var nilClient *RedisClient
	assert.False(t, nilClient.IsEnabled())
}
