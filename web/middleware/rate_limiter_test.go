package middleware

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientRateLimiterBurst(t *testing.T) {
	limiter, err := NewClientRateLimiter(RateLimiterConfig{RequestsPerMinute: 1, BurstSize: 3, MaxClients: 10}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d within burst", i+1)
	}
	allowed, remaining := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _ = limiter.Allow("10.0.0.2")
	assert.True(t, allowed, "clients are limited independently")
}

func TestClientRateLimiterBoundsTrackedClients(t *testing.T) {
	limiter, err := NewClientRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, BurstSize: 1, MaxClients: 5}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, limiter.Tracked())
}
