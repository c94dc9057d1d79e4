package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// Limiter decides whether one more request for key fits in the current window.
// remaining is the number of requests still allowed after this one.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// InMemoryRateLimiter is a fixed window limiter for a single process
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count int
	start time.Time
}

// NewInMemoryRateLimiter creates a limiter and starts its cleanup goroutine
func NewInMemoryRateLimiter(limit int, w time.Duration) *InMemoryRateLimiter {
	rl := &InMemoryRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(w * 2)
	return rl
}

func (rl *InMemoryRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.clients {
				if now.Sub(w.start) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *InMemoryRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns the requests allowed per window
func (rl *InMemoryRateLimiter) Limit() int { return rl.limit }

// Allow checks if a request from the given key should be allowed
func (rl *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &window{start: now}
		rl.clients[key] = w
	}
	if w.count >= rl.limit {
		return false, 0, nil
	}
	w.count++
	return true, rl.limit - w.count, nil
}

// RedisRateLimiter is a fixed window limiter shared by every instance
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter whose counters live under prefix
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, w time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: w}
}

// Limit returns the requests allowed per window
func (rl *RedisRateLimiter) Limit() int { return rl.limit }

// Allow increments the counter of key, starting its window on first use
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := rl.prefix + key

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit window: %w", err)
		}
	}

	if int(count) > rl.limit {
		return false, 0, nil
	}
	return true, rl.limit - int(count), nil
}

// RateLimitConfig configures the RateLimit middleware
type RateLimitConfig struct {
	Limiter Limiter
	// KeyFunc defaults to the client IP
	KeyFunc func(*gin.Context) string
	Logger  *zap.Logger
}

// RateLimit answers 429 once a key exceeds its window. Store errors fail open.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		allowed, remaining, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			log.Warn("Rate limit exceeded", zap.String("key", key), zap.String("path", c.Request.URL.Path))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
