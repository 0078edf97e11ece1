package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/shopagent/agent"
	"github.com/BaSui01/shopagent/api"
	"github.com/BaSui01/shopagent/internal/audit"
	"github.com/BaSui01/shopagent/internal/ctxkeys"
	"github.com/BaSui01/shopagent/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// 💬 对话接口 Handler
// =============================================================================

// auditTimeout 写审计记录的超时，不受请求取消影响
const auditTimeout = 2 * time.Second

// AgentRunner 执行一次对话工作流，agent.Agent 实现该接口
type AgentRunner interface {
	Run(ctx context.Context, initial agent.State) (*agent.Result, error)
}

// RunRecorder 记录运行审计，audit.Store 实现该接口
type RunRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// ChatHandler 对话接口处理器
type ChatHandler struct {
	runner   AgentRunner
	recorder RunRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// ChatOption 对话处理器可选配置
type ChatOption func(*ChatHandler)

// WithRunRecorder 启用运行审计
func WithRunRecorder(r RunRecorder) ChatOption {
	return func(h *ChatHandler) { h.recorder = r }
}

// WithRunTimeout 设置单次运行超时，0 表示不限制
func WithRunTimeout(d time.Duration) ChatOption {
	return func(h *ChatHandler) { h.timeout = d }
}

// NewChatHandler 创建对话处理器
func NewChatHandler(runner AgentRunner, logger *zap.Logger, opts ...ChatOption) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ChatHandler{
		runner: runner,
		logger: logger.With(zap.String("component", "chat_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BearerToken 提取 "Bearer <token>" 中的 token，格式不符时返回 ""
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.Split(header, " ")[1]
}

// HandleChat 处理对话请求
// @Summary 购物助手对话
// @Tags 对话
// @Accept json
// @Produce json
// @Param request body api.ChatRequest true "对话请求"
// @Success 200 {object} api.ChatResponse "对话响应"
// @Failure 400 {object} Response "无效请求"
// @Failure 500 {object} Response "工作流失败"
// @Router /agent/chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.ChatRequest
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

	initial := agent.NewInitialState(req.Query, req.History, BearerToken(r.Header.Get("Authorization")))

	start := time.Now()
	res, err := h.runner.Run(ctx, initial)
	duration := time.Since(start)

	h.record(r.Context(), initial, res, err, duration)

	if err != nil {
		WriteFailure(w, err, types.ErrWorkflowFailed, "agent run failed", h.logger)
		return
	}

	requestID, _ := ctxkeys.RequestID(r.Context())
	h.logger.Info("chat completed",
		zap.String("run_id", res.ExecutionID),
		zap.String("request_id", requestID),
		zap.String("intent", string(res.State.Intent)),
		zap.Strings("path", res.Path),
		zap.Duration("duration", duration),
	)

	WriteJSON(w, http.StatusOK, api.NewChatResponse(res.State))
}

func (h *ChatHandler) record(parent context.Context, initial agent.State, res *agent.Result, runErr error, d time.Duration) {
	if h.recorder == nil {
		return
	}

	entry := audit.Entry{
		RunID:    uuid.NewString(),
		Query:    initial.Query,
		Duration: d,
		Err:      runErr,
	}
	entry.RequestID, _ = ctxkeys.RequestID(parent)
	if res != nil {
		entry.RunID = res.ExecutionID
		entry.Intent = string(res.State.Intent)
		entry.Path = res.Path
		entry.NextStep = res.State.NextStep
		entry.OrderID = res.State.OrderID
		entry.Authenticated = res.State.Authenticated()
		entry.MessageCount = len(res.State.Messages)
		entry.History = res.History
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), auditTimeout)
	defer cancel()
	if err := h.recorder.Record(ctx, entry); err != nil {
		h.logger.Warn("failed to record run", zap.String("run_id", entry.RunID), zap.Error(err))
	}
}
