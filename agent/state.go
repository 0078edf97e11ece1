package agent

import (
	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/commerce"
	"github.com/BaSui01/shopagent/workflow"
)

// Intent 用户意图
type Intent string

const (
	IntentSearch Intent = "search"
	IntentOrder  Intent = "order"
	IntentTrack  Intent = "track"
)

// NextStepEnd 表示对话流程已终止
const NextStepEnd = "end"

// ChatTurn 客户端传入的一条历史消息，原样保存，不参与路由
type ChatTurn map[string]any

// State 单次运行的工作流状态
type State struct {
	Query         string            `json:"query"`
	ChatHistory   []ChatTurn        `json:"chat_history"`
	Token         string            `json:"-"`
	UserInfo      map[string]any    `json:"user_info"`
	Intent        Intent            `json:"intent,omitempty"`
	Product       *catalog.Product  `json:"product"`
	Quantity      int               `json:"quantity"`
	Address       *commerce.Address `json:"address"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Messages      []string          `json:"messages"`
	NextStep      string            `json:"next_step,omitempty"`
	// OrderID 下单成功后由 create_order 写入
	OrderID string `json:"order_id,omitempty"`
}

// NewInitialState 构造一次运行的初始状态，数量默认为 1
func NewInitialState(query string, history []ChatTurn, token string) State {
	if history == nil {
		history = []ChatTurn{}
	}
	return State{
		Query:       query,
		ChatHistory: history,
		Token:       token,
		Quantity:    1,
		Messages:    []string{},
	}
}

// Authenticated 是否已拿到用户信息
func (s State) Authenticated() bool {
	return s.UserInfo != nil
}

// Field 可选字段。Set 为 false 表示节点未指定该字段，
// Set 为 true 且 Value 为零值表示显式置空。
type Field[T any] struct {
	Value T
	Set   bool
}

// Some 返回一个已指定的字段
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Update 节点返回的稀疏更新。Messages 总是追加。
type Update struct {
	UserInfo      Field[map[string]any]
	Intent        Field[Intent]
	Product       Field[*catalog.Product]
	Quantity      Field[int]
	Address       Field[*commerce.Address]
	PaymentMethod Field[string]
	NextStep      Field[string]
	OrderID       Field[string]
	Messages      []string
}

var (
	appendMessages = workflow.AppendReducer[string]()
	keepIntent     = workflow.KeepFirstReducer(func(i Intent) bool { return i != "" })
	keepUserInfo   = workflow.KeepFirstReducer(func(u map[string]any) bool { return u != nil })
)

func merge[T any](dst *T, f Field[T], reduce workflow.Reducer[T]) {
	if f.Set {
		*dst = reduce(*dst, f.Value)
	}
}

// Apply 合并更新并返回新状态，不修改接收者。
// Messages 只增不减；Intent 与 UserInfo 一旦有值就不再被覆盖。
func (s State) Apply(u Update) State {
	next := s
	next.Messages = appendMessages(s.Messages, u.Messages)

	merge(&next.UserInfo, u.UserInfo, keepUserInfo)
	merge(&next.Intent, u.Intent, keepIntent)
	merge(&next.Product, u.Product, workflow.LastValueReducer[*catalog.Product]())
	merge(&next.Quantity, u.Quantity, workflow.LastValueReducer[int]())
	merge(&next.Address, u.Address, workflow.LastValueReducer[*commerce.Address]())
	merge(&next.PaymentMethod, u.PaymentMethod, workflow.LastValueReducer[string]())
	merge(&next.NextStep, u.NextStep, workflow.LastValueReducer[string]())
	merge(&next.OrderID, u.OrderID, workflow.LastValueReducer[string]())

	return next
}
