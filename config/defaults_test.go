package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 8000, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, 25, cfg.Agent.MaxSteps)
	assert.Equal(t, "COD", cfg.Agent.DefaultPaymentMethod)

	assert.Equal(t, "infinite_mart", cfg.Mongo.Database)
	assert.Equal(t, "products", cfg.Mongo.Collection)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, float32(0.7), cfg.Generator.Temperature)
	assert.Equal(t, 150, cfg.Generator.MaxTokens)
	assert.Equal(t, 5, cfg.Generator.TopProducts)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "shopagent:", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.Telemetry.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfig_IndependentCopies(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	a.Server.CORSAllowedOrigins[0] = "changed"
	assert.NotEqual(t, "changed", b.Server.CORSAllowedOrigins[0])
}
