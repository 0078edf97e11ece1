package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/shopagent/api"
	"github.com/BaSui01/shopagent/search"
	"github.com/BaSui01/shopagent/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🔍 搜索接口 Handler
// =============================================================================

// ProductSearcher 执行一次商品搜索，search.Service 实现该接口
type ProductSearcher interface {
	Search(ctx context.Context, query string) (*search.Result, error)
}

// SearchHandler 搜索接口处理器
type SearchHandler struct {
	searcher ProductSearcher
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSearchHandler 创建搜索处理器，timeout 为 0 表示不限制
func NewSearchHandler(searcher ProductSearcher, timeout time.Duration, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{
		searcher: searcher,
		timeout:  timeout,
		logger:   logger.With(zap.String("component", "search_handler")),
	}
}

// HandleSearch 处理搜索请求
// @Summary 自然语言商品搜索
// @Tags 搜索
// @Accept json
// @Produce json
// @Param request body api.SearchRequest true "搜索请求"
// @Success 200 {object} search.Result "搜索结果"
// @Failure 400 {object} Response "无效请求"
// @Failure 500 {object} Response "搜索失败"
// @Router /ai/search [post]
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.SearchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "query is required"), h.logger)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := h.searcher.Search(ctx, req.Query)
	if err != nil {
		WriteFailure(w, err, types.ErrInternalError, "search failed", h.logger)
		return
	}

	h.logger.Info("search completed",
		zap.Int("total_results", res.TotalResults),
		zap.Bool("fallback", res.FiltersApplied.Fallback),
		zap.Duration("duration", time.Since(start)),
	)

	WriteJSON(w, http.StatusOK, res)
}
