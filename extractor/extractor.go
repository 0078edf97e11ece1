package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/internal/cache"
	"github.com/BaSui01/shopagent/llm"
	"github.com/BaSui01/shopagent/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultModel 抽取使用的模型
	DefaultModel = "gpt-4o-mini"

	// DefaultCallTimeout 单次共享抽取调用的超时
	DefaultCallTimeout = 30 * time.Second

	cacheType = "filters"
)

const promptTemplate = `Extract the following from this query:
- category
- brand
- exclude_brand
- price_min
- price_max
- features (as list)

Query: "%s"

Return valid JSON only.
If value not present, return null.`

// Cache 过滤条件缓存，cache.Manager 实现该接口
type Cache interface {
	GetJSON(ctx context.Context, cacheType, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Extractor 基于 LLM 的过滤条件抽取器，可并发使用
type Extractor struct {
	provider llm.Provider
	model    string
	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

// Option 可选配置
type Option func(*Extractor)

// WithModel 覆盖默认模型
func WithModel(model string) Option {
	return func(e *Extractor) {
		if model != "" {
			e.model = model
		}
	}
}

// WithCache 启用结果缓存，ttl 为 0 时使用缓存默认过期时间
func WithCache(c Cache, ttl time.Duration) Option {
	return func(e *Extractor) {
		e.cache = c
		e.ttl = ttl
	}
}

// WithCallTimeout 设置共享模型调用的超时，不受任何单个调用方的 ctx 影响
func WithCallTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New 创建抽取器
func New(provider llm.Provider, logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		provider: provider,
		model:    DefaultModel,
		timeout:  DefaultCallTimeout,
		logger:   logger.With(zap.String("component", "extractor")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildPrompt 返回发送给模型的抽取提示词
func BuildPrompt(query string) string {
	return fmt.Sprintf(promptTemplate, query)
}

// Extract 抽取 query 中的过滤条件。
// 相同 query 的并发调用共享一次模型调用；共享调用脱离调用方的取消信号，
// 每个调用方只在自己的 ctx 结束时提前返回。
func (e *Extractor) Extract(ctx context.Context, query string) (catalog.Filters, error) {
	key := cacheKey(query)

	if f, ok := e.lookup(ctx, key); ok {
		return f, nil
	}

	ch := e.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		return e.extract(callCtx, key, query)
	})

	select {
	case <-ctx.Done():
		return catalog.Filters{}, types.NewError(types.ErrExtractionFailed, "filter extraction failed").WithCause(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return catalog.Filters{}, res.Err
		}
		if res.Shared {
			e.logger.Debug("extraction shared with concurrent caller")
		}
		return res.Val.(catalog.Filters), nil
	}
}

func (e *Extractor) extract(ctx context.Context, key, query string) (catalog.Filters, error) {
	resp, err := e.provider.Completion(ctx, &llm.ChatRequest{
		Model:       e.model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: BuildPrompt(query)}},
		Temperature: 0,
	})
	if err != nil {
		return catalog.Filters{}, types.NewError(types.ErrExtractionFailed, "filter extraction failed").WithCause(err)
	}

	content, err := llm.FirstContent(resp)
	if err != nil {
		return catalog.Filters{}, types.NewError(types.ErrExtractionFailed, "filter extraction returned no choices").WithCause(err)
	}

	filters, ok := ParseFilters(content)
	if !ok {
		e.logger.Warn("model output is not valid JSON, using empty filters", zap.String("content", content))
		return filters, nil
	}

	e.store(ctx, key, filters)
	return filters, nil
}

func (e *Extractor) lookup(ctx context.Context, key string) (catalog.Filters, bool) {
	if e.cache == nil {
		return catalog.Filters{}, false
	}
	var f catalog.Filters
	if err := e.cache.GetJSON(ctx, cacheType, key, &f); err != nil {
		switch {
		case cache.IsCacheMiss(err):
		case errors.Is(err, cache.ErrCorruptValue):
			e.logger.Warn("evicting undecodable cached filters", zap.Error(err))
			if err := e.cache.Delete(ctx, key); err != nil {
				e.logger.Warn("filter cache evict failed", zap.Error(err))
			}
		default:
			e.logger.Warn("filter cache read failed", zap.Error(err))
		}
		return catalog.Filters{}, false
	}
	return f, true
}

func (e *Extractor) store(ctx context.Context, key string, f catalog.Filters) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetJSON(ctx, key, f, e.ttl); err != nil {
		e.logger.Warn("filter cache write failed", zap.Error(err))
	}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return cacheType + ":" + hex.EncodeToString(sum[:])
}
