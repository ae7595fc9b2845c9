package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "nft_ticketing", cfg.DBName)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.1, cfg.PaymentFailureRate)
	assert.Equal(t, "ticket_purchases", cfg.RabbitMQQueue)
	assert.False(t, cfg.UseTransactions)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("PAYMENT_FAILURE_RATE", "0.25")
	t.Setenv("PAYMENT_SEED", "42")
	t.Setenv("METRICS_CACHE_TTL", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.True(t, cfg.UseTransactions)
	assert.Equal(t, 0.25, cfg.PaymentFailureRate)
	assert.Equal(t, int64(42), cfg.PaymentSeed)
	assert.Equal(t, time.Minute, cfg.MetricsCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("PAYMENT_FAILURE_RATE", "often")
	t.Setenv("AUTH_REQUIRED", "maybe")

	cfg := LoadConfig()

	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.1, cfg.PaymentFailureRate)
	assert.False(t, cfg.AuthRequired)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=from_file\n"), 0o600))
	t.Setenv("DB_NAME", "")
	require.NoError(t, os.Unsetenv("DB_NAME"))

	LoadEnvFile(path)
	t.Cleanup(func() { _ = os.Unsetenv("DB_NAME") })

	assert.Equal(t, "from_file", LoadConfig().DBName)
}

func TestValidate(t *testing.T) {
	t.Run("development falls back to a local secret", func(t *testing.T) {
		cfg := LoadConfig()
		assert.NotEmpty(t, cfg.JWTSecret)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production without a secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		cfg := LoadConfig()
		assert.Empty(t, cfg.JWTSecret)
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("production with the development secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", devJWTSecret)
		assert.ErrorContains(t, LoadConfig().Validate(), "JWT_SECRET")
	})

	t.Run("production with a secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "s3cret")
		assert.NoError(t, LoadConfig().Validate())
	})

	t.Run("auth required without an identity provider", func(t *testing.T) {
		t.Setenv("AUTH_REQUIRED", "true")
		assert.ErrorContains(t, LoadConfig().Validate(), "IDP_PUBLIC_KEY")
	})
}
