package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/BaSui01/shopagent/agent"
	"github.com/BaSui01/shopagent/api/handlers"
	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/commerce"
	"github.com/BaSui01/shopagent/config"
	"github.com/BaSui01/shopagent/extractor"
	"github.com/BaSui01/shopagent/generator"
	"github.com/BaSui01/shopagent/internal/audit"
	"github.com/BaSui01/shopagent/internal/cache"
	"github.com/BaSui01/shopagent/internal/database"
	"github.com/BaSui01/shopagent/internal/metrics"
	"github.com/BaSui01/shopagent/internal/pool"
	"github.com/BaSui01/shopagent/internal/server"
	"github.com/BaSui01/shopagent/internal/telemetry"
	"github.com/BaSui01/shopagent/llm"
	"github.com/BaSui01/shopagent/llm/providers/openaicompat"
	"github.com/BaSui01/shopagent/search"
	"github.com/BaSui01/shopagent/workflow"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// =============================================================================
// 🛣️ 路由
// =============================================================================

const (
	routeChat   = "/agent/chat"
	routeSearch = "/ai/search"
	routeRuns   = "/admin/runs"
	routeHealth = "/health"
	routeReady  = "/ready"
)

// knownRoutes 用作指标 path 标签的白名单
var knownRoutes = []string{routeChat, routeSearch, routeRuns, routeHealth, routeReady}

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 shopagent 的主服务器，持有全部外部连接与 HTTP 监听
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// 外部依赖
	telemetry *telemetry.Providers
	collector *metrics.Collector
	catalog   *catalog.Store
	cache     *cache.Manager
	db        *database.PoolManager
	audit     *audit.Store
	auditPool *pool.WorkerPool
	commerce  *commerce.Client

	// Handlers
	healthHandler *handlers.HealthHandler
	chatHandler   *handlers.ChatHandler
	searchHandler *handlers.SearchHandler
	runsHandler   *handlers.RunsHandler

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	rateLimiterCancel context.CancelFunc
	shutdownOnce      sync.Once
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 初始化依赖并启动 HTTP 与 Metrics 服务（非阻塞）。
// 失败时调用方应执行 Shutdown 释放已建立的连接
func (s *Server) Start(ctx context.Context) error {
	// 1. OpenTelemetry，失败不阻止启动
	providers, err := telemetry.Init(ctx, s.cfg.Telemetry, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.telemetry = providers

	// 2. 指标收集器
	s.collector = metrics.NewCollector("shopagent", s.logger)

	// 3. 外部依赖
	if err := s.initDependencies(ctx); err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}

	// 4. Agent、搜索服务与 Handlers
	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	// 5. HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 6. Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("audit_enabled", s.audit != nil),
	)

	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initDependencies 建立 MongoDB、Redis、审计库与 commerce 客户端
func (s *Server) initDependencies(ctx context.Context) error {
	store, err := catalog.Connect(ctx, catalog.Config{
		URI:            s.cfg.Mongo.URI,
		Database:       s.cfg.Mongo.Database,
		Collection:     s.cfg.Mongo.Collection,
		ConnectTimeout: s.cfg.Mongo.ConnectTimeout,
		QueryTimeout:   s.cfg.Mongo.QueryTimeout,
		MaxPoolSize:    s.cfg.Mongo.MaxPoolSize,
	}, s.logger)
	if err != nil {
		return err
	}
	s.catalog = store

	// 缓存是可选的，连接失败时退化为每次调用 LLM
	if s.cfg.Redis.Enabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.Addr = s.cfg.Redis.Addr
		cacheCfg.Password = s.cfg.Redis.Password
		cacheCfg.DB = s.cfg.Redis.DB
		if s.cfg.Redis.KeyPrefix != "" {
			cacheCfg.KeyPrefix = s.cfg.Redis.KeyPrefix
		}
		if s.cfg.Redis.PoolSize > 0 {
			cacheCfg.PoolSize = s.cfg.Redis.PoolSize
		}
		cacheCfg.MinIdleConns = s.cfg.Redis.MinIdleConns

		manager, err := cache.NewManager(cacheCfg, s.logger, cache.WithHitRecorder(s.collector))
		if err != nil {
			s.logger.Warn("Redis not available, filter cache disabled", zap.Error(err))
		} else {
			s.cache = manager
		}
	}

	// 审计同样可选
	if s.cfg.Database.Enabled {
		if err := s.initAudit(ctx); err != nil {
			s.logger.Warn("Audit database not available, run audit disabled", zap.Error(err))
		}
	}

	s.commerce = commerce.NewClient(commerce.Config{
		BaseURL: s.cfg.Commerce.BaseURL,
		Timeout: s.cfg.Commerce.Timeout,
	}, s.logger, commerce.WithCallRecorder(s.collector))

	return nil
}

// initAudit 打开审计库并迁移表结构
func (s *Server) initAudit(ctx context.Context) error {
	poolCfg := database.DefaultPoolConfig()
	if s.cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxOpenConns = s.cfg.Database.MaxOpenConns
	}
	if s.cfg.Database.MaxIdleConns > 0 {
		poolCfg.MaxIdleConns = s.cfg.Database.MaxIdleConns
	}
	if s.cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.ConnMaxLifetime = s.cfg.Database.ConnMaxLifetime
	}

	dbPool, err := database.Open(ctx, s.cfg.Database.Driver, s.cfg.Database.DSN(), poolCfg, s.logger,
		database.WithName("audit"),
		database.WithStatsRecorder(s.collector),
	)
	if err != nil {
		return err
	}

	store := audit.NewStore(dbPool, s.logger, audit.WithQueryRecorder(s.collector))
	if err := store.Migrate(ctx); err != nil {
		_ = dbPool.Close()
		return err
	}

	s.db = dbPool
	s.audit = store
	s.auditPool = pool.New("audit", pool.DefaultConfig(), s.logger)
	return nil
}

// initHandlers 组装 LLM、Agent、搜索服务与全部 handlers
func (s *Server) initHandlers() error {
	provider := llm.NewInstrumentedProvider(openaicompat.New(openaicompat.Config{
		ProviderName: s.cfg.LLM.Provider,
		APIKey:       s.cfg.LLM.APIKey,
		BaseURL:      s.cfg.LLM.BaseURL,
		DefaultModel: s.cfg.LLM.Model,
		Timeout:      s.cfg.LLM.Timeout,
	}, s.logger), s.collector, s.logger)
	if s.cfg.LLM.APIKey == "" {
		s.logger.Warn("LLM API key not configured, search requests will fail")
	}

	extractorOpts := []extractor.Option{extractor.WithCallTimeout(s.cfg.LLM.Timeout)}
	if s.cfg.LLM.Model != "" {
		extractorOpts = append(extractorOpts, extractor.WithModel(s.cfg.LLM.Model))
	}
	if s.cache != nil {
		extractorOpts = append(extractorOpts, extractor.WithCache(s.cache, s.cfg.Extractor.CacheTTL))
	}
	filterExtractor := extractor.New(provider, s.logger, extractorOpts...)

	responseGenerator := generator.New(provider, generator.Config{
		Model:       s.cfg.LLM.Model,
		Temperature: s.cfg.Generator.Temperature,
		MaxTokens:   s.cfg.Generator.MaxTokens,
		TopProducts: s.cfg.Generator.TopProducts,
	}, s.logger)

	steps := agent.NewSteps(agent.Dependencies{
		Users:     s.commerce,
		Orders:    s.commerce,
		Extractor: filterExtractor,
		Catalog:   s.catalog,
	}, s.logger, agent.WithDefaultPaymentMethod(s.cfg.Agent.DefaultPaymentMethod))

	shoppingAgent, err := agent.New(steps, s.logger,
		workflow.WithObserver(s.collector),
		workflow.WithTracer(otel.Tracer("shopagent/workflow")),
		workflow.WithMaxSteps(s.cfg.Agent.MaxSteps),
	)
	if err != nil {
		return err
	}

	chatOpts := []handlers.ChatOption{handlers.WithRunTimeout(s.cfg.Agent.Timeout)}
	if s.audit != nil {
		chatOpts = append(chatOpts, handlers.WithRunRecorder(audit.NewAsyncRecorder(s.audit, s.auditPool)))
		s.runsHandler = handlers.NewRunsHandler(s.audit, s.logger)
	}
	s.chatHandler = handlers.NewChatHandler(shoppingAgent, s.logger, chatOpts...)

	searchService := search.NewService(filterExtractor, s.catalog, responseGenerator, s.logger)
	s.searchHandler = handlers.NewSearchHandler(searchService, s.cfg.Agent.Timeout, s.logger)

	s.healthHandler = handlers.NewHealthHandler(Version, s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("mongo", s.catalog.Ping))
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("commerce", s.commerce.Ping))
	if s.cache != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.cache.Ping))
	}
	if s.audit != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("audit", s.audit.Ping))
	}

	s.logger.Info("Handlers initialized", zap.Strings("agent_nodes", shoppingAgent.Nodes()))
	return nil
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// routes 注册全部业务路由
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+routeHealth, s.healthHandler.HandleHealth)
	mux.HandleFunc("GET "+routeReady, s.healthHandler.HandleReady)

	mux.HandleFunc("POST "+routeChat, s.chatHandler.HandleChat)
	mux.HandleFunc("POST "+routeSearch, s.searchHandler.HandleSearch)

	if s.runsHandler != nil {
		mux.HandleFunc("GET "+routeRuns, s.runsHandler.HandleList)
	}

	return mux
}

// handler 构建中间件链
func (s *Server) handler(ctx context.Context) http.Handler {
	return Chain(s.routes(),
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(s.collector, knownRoutes),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		APIKeyAuth(s.cfg.Server.APIKeys, []string{"/admin/"}, s.logger),
	)
}

// startHTTPServer 启动业务 HTTP 服务器
func (s *Server) startHTTPServer() error {
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager("http", s.handler(rateLimiterCtx), serverConfig, s.logger)
	return s.httpManager.Start()
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 在独立端口暴露 /metrics，端口为 0 时不启动
func (s *Server) startMetricsServer() error {
	if s.cfg.Server.MetricsPort == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager("metrics", mux, serverConfig, s.logger)
	return s.metricsManager.Start()
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 阻塞直到 ctx 结束或任一服务器异常退出，然后优雅关闭
func (s *Server) WaitForShutdown(ctx context.Context) {
	var httpErrs, metricsErrs <-chan error
	if s.httpManager != nil {
		httpErrs = s.httpManager.Errors()
	}
	if s.metricsManager != nil {
		metricsErrs = s.metricsManager.Errors()
	}

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case err := <-httpErrs:
		s.logger.Error("HTTP server exited unexpectedly", zap.Error(err))
	case err := <-metricsErrs:
		s.logger.Error("Metrics server exited unexpectedly", zap.Error(err))
	}

	s.Shutdown()
}

// Shutdown 依次关闭 HTTP 监听与外部连接，可重复调用
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(s.shutdown)
}

func (s *Server) shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 0. 停止 rate limiter 清理 goroutine
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	// 1. 停止接收请求
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 2. 释放外部连接
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("Cache close error", zap.Error(err))
		}
	}
	if s.auditPool != nil {
		if err := s.auditPool.Close(ctx); err != nil {
			s.logger.Error("Audit queue drain error", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Audit database close error", zap.Error(err))
		}
	}
	if s.catalog != nil {
		if err := s.catalog.Close(ctx); err != nil {
			s.logger.Error("Catalog close error", zap.Error(err))
		}
	}

	// 3. 刷新遥测数据
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.Error("Telemetry shutdown error", zap.Error(err))
	}

	s.logger.Info("Graceful shutdown completed")
}
