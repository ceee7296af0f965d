package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mpwr")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_pool")
	t.Setenv("COGNITO_CLIENT_ID", "client")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.OverrideTTL)
	assert.Equal(t, 15*time.Minute, cfg.S3.PresignExpiry)
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_pool", cfg.Cognito.IssuerURL())
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OVERRIDE_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")
	t.Setenv("CORS_ORIGINS", "https://portal.example.com,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.OverrideTTL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("COGNITO_CLIENT_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("OVERRIDE_TTL", "-5m")

	_, err := Load()
	assert.Error(t, err)
}
