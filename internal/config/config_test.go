package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("METRICS_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("MAX_DB_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, int32(10), cfg.MaxDBConns)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "session:abc", CacheKey.SessionKey("abc"))
	assert.Equal(t, "user:u1:notifications", CacheKey.UserNotificationChannel("u1"))
}
