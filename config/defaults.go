// =============================================================================
// 📦 shopagent 默认配置
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Agent:     DefaultAgentConfig(),
		Commerce:  DefaultCommerceConfig(),
		Mongo:     DefaultMongoConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		LLM:       DefaultLLMConfig(),
		Extractor: DefaultExtractorConfig(),
		Generator: DefaultGeneratorConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:           8000,
		MetricsPort:        9091,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		CORSAllowedOrigins: []string{"http://localhost:5173", "https://infinite-mart-ecom.vercel.app"},
		RateLimitRPS:       20,
		RateLimitBurst:     40,
	}
}

// DefaultAgentConfig 返回默认 Agent 配置
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Timeout:              45 * time.Second,
		MaxSteps:             25,
		DefaultPaymentMethod: "COD",
	}
}

// DefaultCommerceConfig 返回默认 commerce 服务配置
func DefaultCommerceConfig() CommerceConfig {
	return CommerceConfig{
		BaseURL: "http://localhost:5000",
		Timeout: 10 * time.Second,
	}
}

// DefaultMongoConfig 返回默认商品目录配置
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "infinite_mart",
		Collection:     "products",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   5 * time.Second,
		MaxPoolSize:    50,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      true,
		Addr:         "localhost:6379",
		DB:           0,
		KeyPrefix:    "shopagent:",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认审计数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         true,
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "shopagent",
		Name:            "shopagent_audit.db",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "openai",
		BaseURL:  "https://api.openai.com",
		Model:    "gpt-4o-mini",
		Timeout:  30 * time.Second,
	}
}

// DefaultExtractorConfig 返回默认抽取器配置
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{CacheTTL: 10 * time.Minute}
}

// DefaultGeneratorConfig 返回默认回复生成配置
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Temperature: 0.7,
		MaxTokens:   150,
		TopProducts: 5,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "shopagent",
		SampleRate:   0.1,
	}
}
