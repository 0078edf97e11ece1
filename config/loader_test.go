// 配置加载器测试。
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEnv 用 map 替代进程环境变量，避免测试间相互影响
func mapEnv(l *Loader, env map[string]string) *Loader {
	l.lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return l
}

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := mapEnv(NewLoader(), nil).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
server:
  http_port: 8888
  api_keys: ["k1", "k2"]
agent:
  timeout: 20s
mongo:
  uri: "mongodb://mongo:27017"
  database: "shop"
generator:
  temperature: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg, err := mapEnv(NewLoader().WithConfigPath(path), nil).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, 20*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "shop", cfg.Mongo.Database)
	assert.Equal(t, "products", cfg.Mongo.Collection)
	assert.Equal(t, float32(0.2), cfg.Generator.Temperature)
}

func TestLoader_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := mapEnv(NewLoader().WithConfigPath("/nonexistent/config.yaml"), nil).Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := mapEnv(NewLoader().WithConfigPath(path), nil).Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverrides(t *testing.T) {
	cfg, err := mapEnv(NewLoader(), map[string]string{
		"SHOPAGENT_SERVER_HTTP_PORT":            "9000",
		"SHOPAGENT_SERVER_CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test,",
		"SHOPAGENT_AGENT_TIMEOUT":               "5s",
		"SHOPAGENT_MONGO_MAX_POOL_SIZE":         "7",
		"SHOPAGENT_REDIS_ENABLED":               "false",
		"SHOPAGENT_GENERATOR_TEMPERATURE":       "0.3",
		"SHOPAGENT_COMMERCE_BASE_URL":           "http://commerce:5000",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, uint64(7), cfg.Mongo.MaxPoolSize)
	assert.False(t, cfg.Redis.Enabled)
	assert.InDelta(t, 0.3, float64(cfg.Generator.Temperature), 1e-6)
	assert.Equal(t, "http://commerce:5000", cfg.Commerce.BaseURL)
}

func TestLoader_LegacyEnv(t *testing.T) {
	cfg, err := mapEnv(NewLoader(), map[string]string{
		"MONGO_URL":      "mongodb://legacy:27017",
		"DATABASE_NAME":  "legacy_db",
		"OPENAI_API_KEY": "sk-legacy",
		"FT_API_URL":     "http://legacy:5000",
		// 带前缀的变量优先
		"SHOPAGENT_MONGO_DATABASE": "prefixed_db",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://legacy:27017", cfg.Mongo.URI)
	assert.Equal(t, "prefixed_db", cfg.Mongo.Database)
	assert.Equal(t, "sk-legacy", cfg.LLM.APIKey)
	assert.Equal(t, "http://legacy:5000", cfg.Commerce.BaseURL)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	_, err := mapEnv(NewLoader(), map[string]string{
		"SHOPAGENT_AGENT_TIMEOUT": "soon",
	}).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPAGENT_AGENT_TIMEOUT")
}

func TestLoader_CustomPrefixAndValidator(t *testing.T) {
	cfg, err := mapEnv(NewLoader().WithEnvPrefix("SA"), map[string]string{
		"SA_SERVER_HTTP_PORT": "7000",
	}).WithValidator(func(c *Config) error { return c.Validate() }).Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.HTTPPort)

	_, err = mapEnv(NewLoader(), nil).
		WithValidator(func(*Config) error { return errors.New("nope") }).
		Load()
	assert.ErrorContains(t, err, "nope")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid HTTP port"},
		{"port clash", func(c *Config) { c.Server.MetricsPort = c.Server.HTTPPort }, "metrics port must differ"},
		{"burst missing", func(c *Config) { c.Server.RateLimitBurst = 0 }, "rate_limit_burst"},
		{"max steps", func(c *Config) { c.Agent.MaxSteps = 0 }, "agent.max_steps"},
		{"payment", func(c *Config) { c.Agent.DefaultPaymentMethod = "" }, "default_payment_method"},
		{"commerce", func(c *Config) { c.Commerce.BaseURL = "" }, "commerce.base_url"},
		{"mongo uri", func(c *Config) { c.Mongo.URI = "" }, "mongo.uri"},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"temperature", func(c *Config) { c.Generator.Temperature = 3 }, "generator.temperature"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.HTTPPort = -1
	cfg.Mongo.URI = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
	assert.Contains(t, err.Error(), "mongo.uri")
}

func TestConfig_DisabledAuditSkipsDriverCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Enabled = false
	cfg.Database.Driver = "mysql"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "audit", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=audit sslmode=disable", d.DSN())

	d.Driver = "sqlite"
	assert.Equal(t, "audit", d.DSN())

	d.Driver = "oracle"
	assert.Equal(t, "", d.DSN())
}
