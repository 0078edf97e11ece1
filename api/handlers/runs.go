package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/BaSui01/shopagent/api"
	"github.com/BaSui01/shopagent/internal/audit"
	"github.com/BaSui01/shopagent/types"
	"go.uber.org/zap"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunLister 查询最近的运行记录，audit.Store 实现该接口
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]audit.RunRecord, error)
}

// RunsHandler 运行审计查询处理器
type RunsHandler struct {
	store  RunLister
	logger *zap.Logger
}

// NewRunsHandler 创建运行审计处理器
func NewRunsHandler(store RunLister, logger *zap.Logger) *RunsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunsHandler{store: store, logger: logger.With(zap.String("component", "runs_handler"))}
}

// HandleList 处理 GET /admin/runs?limit=N
// @Summary 最近的工作流运行
// @Tags 运维
// @Produce json
// @Param limit query int false "返回条数（1-100，默认 20）"
// @Success 200 {object} Response "运行记录"
// @Security ApiKeyAuth
// @Router /admin/runs [get]
func (h *RunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunsLimit {
			WriteError(w, types.NewError(types.ErrInvalidRequest, "limit must be between 1 and 100"), h.logger)
			return
		}
		limit = n
	}

	records, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		WriteFailure(w, err, types.ErrInternalError, "failed to list runs", h.logger)
		return
	}

	out := make([]api.RunSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, toRunSummary(rec))
	}
	WriteSuccess(w, out)
}

func toRunSummary(rec audit.RunRecord) api.RunSummary {
	s := api.RunSummary{
		RunID:         rec.RunID,
		RequestID:     rec.RequestID,
		Query:         rec.Query,
		Intent:        rec.Intent,
		Path:          []string{},
		NextStep:      rec.NextStep,
		OrderID:       rec.OrderID,
		Authenticated: rec.Authenticated,
		MessageCount:  rec.MessageCount,
		DurationMs:    rec.DurationMs,
		Error:         rec.Error,
		CreatedAt:     rec.CreatedAt,
	}
	if rec.Path != "" {
		s.Path = strings.Split(rec.Path, ",")
	}
	for _, step := range rec.Steps {
		s.Steps = append(s.Steps, api.StepSummary{
			Node:       step.Node,
			NextNode:   step.NextNode,
			Status:     step.Status,
			DurationMs: step.DurationMs,
			Error:      step.Error,
		})
	}
	return s
}
