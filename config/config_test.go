package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("EMPTY_STORE_POLICY", "shout")
	t.Setenv("MUTATION_MAX_RETRIES", "-2")

	cfg := Load(zap.NewNop())
	require.NotNil(t, cfg)

	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.SMSTimeout)
	assert.Equal(t, EmptyStorePolicyTransform, cfg.EmptyStorePolicy, "unknown policy falls back to transform")
	assert.Zero(t, cfg.MutationMaxRetries)
	assert.True(t, cfg.BlacklistEnabled)
	assert.Equal(t, 8080, cfg.WebPort)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"WARNING": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"bogus":   zap.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
