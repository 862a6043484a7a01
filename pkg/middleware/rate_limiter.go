package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/prohmpiriya/ticket-purchase/pkg/redis"
	"github.com/prohmpiriya/ticket-purchase/pkg/response"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Tokens added per second for each account or client IP
	RequestsPerSecond int
	// Token bucket capacity
	BurstSize int
	// Use Redis so that limits hold across replicas
	UseRedis bool
	// Redis client, required if UseRedis is true
	RedisClient *pkgredis.Client
	KeyPrefix   string
	// Cleanup interval and entry TTL for the local limiter
	CleanupInterval time.Duration
	EntryTTL        time.Duration
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         20,
		KeyPrefix:         "ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

type rateLimitEntry struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// LocalRateLimiter is an in-memory token bucket per key
type LocalRateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	now     func() time.Time

	totalAllowed  uint64
	totalRejected uint64
}

// NewLocalRateLimiter creates a local rate limiter and starts its cleanup loop
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = time.Minute
	}

	rl := &LocalRateLimiter{
		config: config,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go rl.cleanup()

	return rl
}

// Allow takes a token from the bucket of key
func (rl *LocalRateLimiter) Allow(key string) bool {
	now := rl.now()

	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	e.tokens = min(float64(rl.config.BurstSize), e.tokens+elapsed*float64(rl.config.RequestsPerSecond))
	e.lastUpdate = now

	if e.tokens >= 1 {
		e.tokens--
		atomic.AddUint64(&rl.totalAllowed, 1)
		return true
	}

	atomic.AddUint64(&rl.totalRejected, 1)
	return false
}

// Stats returns the number of allowed and rejected requests
func (rl *LocalRateLimiter) Stats() (allowed, rejected uint64) {
	return atomic.LoadUint64(&rl.totalAllowed), atomic.LoadUint64(&rl.totalRejected)
}

func (rl *LocalRateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value interface{}) bool {
				e := value.(*rateLimitEntry)
				e.mu.Lock()
				if e.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				e.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup loop and waits for it to exit
func (rl *LocalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
	<-rl.done
}

// tokenBucketScript keeps a token bucket in a hash.
// KEYS[1] bucket key, ARGV[1] rate, ARGV[2] burst, ARGV[3] now in seconds
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", KEYS[1], "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

tokens = math.min(burst, tokens + (now - last_update) * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "last_update", tostring(now))
redis.call("EXPIRE", KEYS[1], 60)
return {allowed, math.floor(tokens)}
`

// RedisRateLimiter is a token bucket shared through Redis
type RedisRateLimiter struct {
	config RateLimitConfig
}

// NewRedisRateLimiter creates a Redis rate limiter
func NewRedisRateLimiter(config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{config: config}
}

// Allow takes a token from the bucket of key
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / 1e9

	values, err := rl.config.RedisClient.Eval(ctx, tokenBucketScript,
		[]string{rl.config.KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstSize,
		strconv.FormatFloat(now, 'f', 6, 64),
	).Slice()
	if err != nil {
		return false, err
	}
	if len(values) < 1 {
		return false, fmt.Errorf("unexpected rate limit result: %v", values)
	}

	allowed, _ := values[0].(int64)
	return allowed == 1, nil
}

// RateLimiter limits requests per account, or per client IP for
// unauthenticated requests. Redis errors let the request through. The
// returned stop function releases the local limiter and must be called once
// the handler is no longer served.
func RateLimiter(config RateLimitConfig) (gin.HandlerFunc, func()) {
	var local *LocalRateLimiter
	var distributed *RedisRateLimiter

	stop := func() {}
	if config.UseRedis && config.RedisClient != nil {
		distributed = NewRedisRateLimiter(config)
	} else {
		local = NewLocalRateLimiter(config)
		stop = local.Stop
	}

	return func(c *gin.Context) {
		key := rateLimitKey(c)

		var allowed bool
		if distributed != nil {
			var err error
			allowed, err = distributed.Allow(c.Request.Context(), key)
			if err != nil {
				allowed = true
			}
		} else {
			allowed = local.Allow(key)
		}

		remaining := config.BurstSize - 1
		if !allowed {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Error(
				response.ErrCodeTooManyRequests,
				"Rate limit exceeded. Please retry after 1 second(s).",
			))
			return
		}

		c.Next()
	}, stop
}

func rateLimitKey(c *gin.Context) string {
	if accountID, ok := GetAccountID(c); ok {
		return "account:" + accountID
	}
	return "ip:" + c.ClientIP()
}
