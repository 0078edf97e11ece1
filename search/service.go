package search

import (
	"context"
	"fmt"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/types"
	"go.uber.org/zap"
)

// FilterExtractor 把查询文本转换为过滤条件
type FilterExtractor interface {
	Extract(ctx context.Context, query string) (catalog.Filters, error)
}

// ResponseGenerator 为搜索结果生成自然语言回复
type ResponseGenerator interface {
	Generate(ctx context.Context, query string, products []catalog.Product, filters any) string
}

// AppliedFilters 实际生效的过滤条件。品牌兜底时只保留 Brand 并标记 Fallback。
type AppliedFilters struct {
	catalog.Filters
	Fallback bool `json:"fallback,omitempty"`
}

// Result 搜索结果
type Result struct {
	Message        string            `json:"message"`
	Notice         string            `json:"notice,omitempty"`
	FiltersApplied AppliedFilters    `json:"filters_applied"`
	TotalResults   int               `json:"total_results"`
	Products       []catalog.Product `json:"products"`
}

// Service 商品搜索服务，可并发使用
type Service struct {
	extractor FilterExtractor
	catalog   catalog.Searcher
	generator ResponseGenerator
	logger    *zap.Logger
}

// NewService 创建搜索服务
func NewService(extractor FilterExtractor, searcher catalog.Searcher, generator ResponseGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		catalog:   searcher,
		generator: generator,
		logger:    logger.With(zap.String("component", "search")),
	}
}

// FallbackNotice 品牌兜底时的提示
func FallbackNotice(brand string) string {
	return fmt.Sprintf("No exact matches found. Showing other %s products.", brand)
}

// Search 执行一次搜索。抽取或目录查询失败时返回错误，回复生成失败会降级为固定文案。
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	filters, err := s.extractor.Extract(ctx, query)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Search(ctx, filters)
	if err != nil {
		return nil, types.NewError(types.ErrCatalogUnavailable, "catalog search failed").WithCause(err)
	}

	applied := AppliedFilters{Filters: filters}
	var notice string

	if len(products) == 0 && filters.Brand != "" {
		s.logger.Info("no exact matches, falling back to brand search", zap.String("brand", filters.Brand))
		fallback, err := s.catalog.SearchByBrand(ctx, filters.Brand)
		if err != nil {
			return nil, types.NewError(types.ErrCatalogUnavailable, "catalog brand search failed").WithCause(err)
		}
		if len(fallback) > 0 {
			products = fallback
			notice = FallbackNotice(filters.Brand)
			applied = AppliedFilters{Filters: catalog.Filters{Brand: filters.Brand}, Fallback: true}
		}
	}

	if len(products) > 0 && !applied.Fallback {
		products = catalog.Rank(products, filters)
	}
	if products == nil {
		products = []catalog.Product{}
	}

	message := s.generator.Generate(ctx, query, products, applied)

	s.logger.Debug("search completed",
		zap.Int("results", len(products)),
		zap.Bool("fallback", applied.Fallback),
	)

	return &Result{
		Message:        message,
		Notice:         notice,
		FiltersApplied: applied,
		TotalResults:   len(products),
		Products:       products,
	}, nil
}
