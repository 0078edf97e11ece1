package api

import (
	"time"

	"github.com/BaSui01/shopagent/agent"
	"github.com/BaSui01/shopagent/catalog"
)

// =============================================================================
// 💬 对话接口
// =============================================================================

// ChatRequest 对话请求
// @Description 对话请求结构
type ChatRequest struct {
	// 用户输入
	Query string `json:"query" example:"buy iphone"`
	// 客户端保留的历史消息，原样透传
	History []agent.ChatTurn `json:"history,omitempty"`
}

// ChatResponse 对话响应
// @Description 对话响应结构
type ChatResponse struct {
	// 本次运行产生的全部提示消息
	Messages []string `json:"messages"`
	// 流程结束时为 "end"，否则为 null
	NextStep *string `json:"next_step"`
	// 附加数据
	Data ChatData `json:"data"`
}

// ChatData 对话响应附加数据
type ChatData struct {
	// 选中的商品
	Product *catalog.Product `json:"product"`
	// next_step 为 "end" 时为 "created"，否则为 null
	OrderStatus *string `json:"order_status"`
}

// OrderStatusCreated 流程终止时返回的 order_status
const OrderStatusCreated = "created"

// NewChatResponse 从最终状态构造响应。
// order_status 只由 next_step 推导，不区分下单成功与失败。
func NewChatResponse(s agent.State) ChatResponse {
	messages := s.Messages
	if messages == nil {
		messages = []string{}
	}
	resp := ChatResponse{
		Messages: messages,
		Data:     ChatData{Product: s.Product},
	}
	if s.NextStep != "" {
		next := s.NextStep
		resp.NextStep = &next
	}
	if s.NextStep == agent.NextStepEnd {
		status := OrderStatusCreated
		resp.Data.OrderStatus = &status
	}
	return resp
}

// =============================================================================
// 🔍 搜索接口
// =============================================================================

// SearchRequest 搜索请求
// @Description 搜索请求结构
type SearchRequest struct {
	// 自然语言查询
	Query string `json:"query" example:"samsung phone under 30000"`
}

// =============================================================================
// 🧾 审计接口
// =============================================================================

// RunSummary 一次运行的审计摘要
type RunSummary struct {
	RunID         string        `json:"run_id"`
	RequestID     string        `json:"request_id,omitempty"`
	Query         string        `json:"query"`
	Intent        string        `json:"intent,omitempty"`
	Path          []string      `json:"path"`
	NextStep      string        `json:"next_step,omitempty"`
	OrderID       string        `json:"order_id,omitempty"`
	Authenticated bool          `json:"authenticated"`
	MessageCount  int           `json:"message_count"`
	DurationMs    int64         `json:"duration_ms"`
	Error         string        `json:"error,omitempty"`
	Steps         []StepSummary `json:"steps,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StepSummary 单个节点的审计摘要
type StepSummary struct {
	Node       string `json:"node"`
	NextNode   string `json:"next_node,omitempty"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
