package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	RequestsPerMinute int // Sustained requests per client per minute
	BurstSize         int // Allow burst of N requests
	MaxClients        int // Clients tracked at once; least recently seen are evicted
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Remaining returns the number of tokens remaining
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := time.Since(tb.lastRefill).Seconds()
	tokens := min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	return int(tokens)
}

// ClientRateLimiter keeps one token bucket per client key in a bounded LRU.
type ClientRateLimiter struct {
	config  RateLimiterConfig
	buckets *lru.Cache
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewClientRateLimiter creates a new client-keyed rate limiter
func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger) (*ClientRateLimiter, error) {
	if config.MaxClients <= 0 {
		config.MaxClients = 10000
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	buckets, err := lru.New(config.MaxClients)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter cache: %w", err)
	}
	return &ClientRateLimiter{
		config:  config,
		buckets: buckets,
		logger:  logger,
	}, nil
}

// Allow checks if a request from key can proceed and reports the tokens left.
func (l *ClientRateLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	var bucket *TokenBucket
	if v, ok := l.buckets.Get(key); ok {
		bucket = v.(*TokenBucket)
	} else {
		// BurstSize tokens, refill at RequestsPerMinute/60 per second
		refillRate := float64(l.config.RequestsPerMinute) / 60.0
		bucket = NewTokenBucket(float64(l.config.BurstSize), refillRate)
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	allowed := bucket.Allow()
	return allowed, bucket.Remaining()
}

// Tracked returns the number of clients currently holding a bucket
func (l *ClientRateLimiter) Tracked() int {
	return l.buckets.Len()
}

// RateLimitMiddleware creates a Gin middleware limiting requests per client IP
func RateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		allowed, remaining := limiter.Allow(clientIP)

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.config.BurstSize))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			LoggerFrom(c).Warn("Rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.Int("limit", limiter.config.BurstSize))

			c.Header("Retry-After", "60") // Suggest retry after 60 seconds
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limiter.config.BurstSize,
				"remaining":   remaining,
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
