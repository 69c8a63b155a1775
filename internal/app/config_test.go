package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.AdminSessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.IngestionDelay)
	assert.True(t, cfg.AdminCookieSecure)
	assert.False(t, cfg.AirtableConfigured())
	assert.False(t, cfg.StorageConfigured())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("AIRTABLE_BASE_ID", "app1")
	t.Setenv("AIRTABLE_TOKEN", "pat")
	t.Setenv("CERTIFICATE_GCS_BUCKET", "certs")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AirtableConfigured())
	assert.True(t, cfg.StorageConfigured())
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "s3cret")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
