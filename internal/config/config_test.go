package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("AI_API_KEY", "key")

	cfg := FromEnv()

	assert.Equal(t, "secret", cfg.AuthSecret)
	assert.Equal(t, "key", cfg.AI.APIKey)
	assert.Equal(t, ":8080", cfg.Http.ListenAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("AI_API_KEY", "key")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("DB_NAME", "lexi_test")

	cfg := FromEnv()

	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "lexi_test", cfg.DB.Name)
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("AI_API_KEY", "key")

	assert.Panics(t, func() { FromEnv() })
}
