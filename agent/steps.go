package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/commerce"
	"github.com/BaSui01/shopagent/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🔌 协作方接口
// =============================================================================

// UserService 查询当前登录用户，commerce.Client 实现该接口
type UserService interface {
	GetCurrentUser(ctx context.Context, token string) (*commerce.Response, error)
}

// OrderService 创建订单，commerce.Client 实现该接口
type OrderService interface {
	CreateOrder(ctx context.Context, token string, payload commerce.OrderPayload) (*commerce.Response, error)
}

// FilterExtractor 从查询文本中抽取过滤条件，extractor.Extractor 实现该接口
type FilterExtractor interface {
	Extract(ctx context.Context, query string) (catalog.Filters, error)
}

// Dependencies 工作流节点依赖的外部协作方
type Dependencies struct {
	Users     UserService
	Orders    OrderService
	Extractor FilterExtractor
	Catalog   catalog.Searcher
}

// =============================================================================
// 📝 固定文案
// =============================================================================

const (
	MsgProductNotFound   = "Product not found."
	MsgNoProductSelected = "No product selected."
	MsgOutOfStock        = "Sorry, this product is out of stock."
	MsgMissingOrderInfo  = "Cannot create order: Missing info."
	MsgOrderCreated      = "Order created successfully!"
	MsgLoginRequired     = "You need to be logged in to place an order. Please log in first."

	// DefaultPaymentMethod 未指定支付方式时使用货到付款
	DefaultPaymentMethod = "COD"

	// fallbackOrderID 下单成功但响应中没有订单号时使用
	fallbackOrderID = "created"

	orderIDPrefix = "Order ID: "
)

// PlaceholderAddress 单轮对话无法收集地址，collect_info 总是填入该占位地址
func PlaceholderAddress() *commerce.Address {
	return &commerce.Address{
		Address:    "123 Main St",
		City:       "Tech City",
		PostalCode: "123456",
		Country:    "India",
	}
}

// =============================================================================
// 🧩 节点实现
// =============================================================================

// Steps 工作流节点集合，可被并发运行共享
type Steps struct {
	deps           Dependencies
	defaultPayment string
	logger         *zap.Logger
}

// StepsOption 节点可选配置
type StepsOption func(*Steps)

// WithDefaultPaymentMethod 覆盖默认支付方式，空字符串被忽略
func WithDefaultPaymentMethod(method string) StepsOption {
	return func(s *Steps) {
		if method != "" {
			s.defaultPayment = method
		}
	}
}

// NewSteps 创建节点集合
func NewSteps(deps Dependencies, logger *zap.Logger, opts ...StepsOption) *Steps {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Steps{
		deps:           deps,
		defaultPayment: DefaultPaymentMethod,
		logger:         logger.With(zap.String("component", "agent_steps")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckLogin 用 token 查询当前用户。任何失败都视为未登录，不返回错误。
func (s *Steps) CheckLogin(ctx context.Context, state State) (Update, error) {
	if state.Token == "" {
		return Update{UserInfo: Some[map[string]any](nil)}, nil
	}

	resp, err := s.deps.Users.GetCurrentUser(ctx, state.Token)
	if err != nil {
		s.logger.Warn("login check failed", zap.Error(err))
		return Update{UserInfo: Some[map[string]any](nil)}, nil
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Info("login check rejected", zap.Int("status", resp.StatusCode))
		return Update{UserInfo: Some[map[string]any](nil)}, nil
	}

	user, err := resp.User()
	if err != nil {
		s.logger.Warn("login check returned malformed body", zap.Error(err))
		return Update{UserInfo: Some[map[string]any](nil)}, nil
	}
	if len(user) == 0 {
		user = nil
	}
	return Update{UserInfo: Some(user)}, nil
}

// ClassifyIntent 按关键字识别意图，大小写不敏感
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "buy") || strings.Contains(q, "order"):
		return IntentOrder
	case strings.Contains(q, "track") || strings.Contains(q, "status"):
		return IntentTrack
	default:
		return IntentSearch
	}
}

// AnalyzeIntent 识别查询意图
func (s *Steps) AnalyzeIntent(_ context.Context, state State) (Update, error) {
	return Update{Intent: Some(ClassifyIntent(state.Query))}, nil
}

// SearchProduct 抽取过滤条件并检索目录，只取第一个结果
func (s *Steps) SearchProduct(ctx context.Context, state State) (Update, error) {
	filters, err := s.deps.Extractor.Extract(ctx, state.Query)
	if err != nil {
		return Update{}, err
	}

	products, err := s.deps.Catalog.Search(ctx, filters)
	if err != nil {
		return Update{}, types.NewError(types.ErrCatalogUnavailable, "catalog search failed").WithCause(err)
	}

	if len(products) == 0 {
		return Update{
			Product:  Some[*catalog.Product](nil),
			Messages: []string{MsgProductNotFound},
		}, nil
	}

	product := products[0]
	return Update{
		Product:  Some(&product),
		Messages: []string{"Found " + product.Name},
	}, nil
}

// CheckStock 检查所选商品库存
func (s *Steps) CheckStock(_ context.Context, state State) (Update, error) {
	if state.Product == nil {
		return Update{
			Messages: []string{MsgNoProductSelected},
			NextStep: Some(NextStepEnd),
		}, nil
	}
	if state.Product.InStock() {
		return Update{Messages: []string{state.Product.Name + " is in stock."}}, nil
	}
	return Update{
		Messages: []string{MsgOutOfStock},
		NextStep: Some(NextStepEnd),
	}, nil
}

// CollectInfo 补全下单信息。地址总是被占位地址覆盖。
func (s *Steps) CollectInfo(_ context.Context, state State) (Update, error) {
	var u Update
	if state.Quantity == 0 {
		u.Quantity = Some(1)
	}
	if state.PaymentMethod == "" {
		u.PaymentMethod = Some(s.defaultPayment)
	}
	u.Address = Some(PlaceholderAddress())
	return u, nil
}

// CreateOrder 调用订单服务下单。缺少必要信息时只返回提示，不设置 NextStep。
func (s *Steps) CreateOrder(ctx context.Context, state State) (Update, error) {
	if state.UserInfo == nil || state.Product == nil || state.Token == "" || state.Address == nil {
		return Update{Messages: []string{MsgMissingOrderInfo}}, nil
	}

	payload := BuildOrderPayload(state, s.defaultPayment)

	resp, err := s.deps.Orders.CreateOrder(ctx, state.Token, payload)
	if err != nil {
		s.logger.Warn("create order failed", zap.Error(err))
		return Update{
			Messages: []string{fmt.Sprintf("Error creating order: %v", err)},
			NextStep: Some(NextStepEnd),
		}, nil
	}

	if resp.StatusCode != http.StatusCreated {
		s.logger.Info("create order rejected", zap.Int("status", resp.StatusCode))
		return Update{
			Messages: []string{"Failed to create order: " + resp.Text()},
			NextStep: Some(NextStepEnd),
		}, nil
	}

	orderID := resp.OrderID()
	if orderID == "" {
		orderID = fallbackOrderID
	}
	s.logger.Info("order created", zap.String("order_id", orderID))

	return Update{
		Messages: []string{MsgOrderCreated, orderIDPrefix + orderID},
		NextStep: Some(NextStepEnd),
		OrderID:  Some(orderID),
	}, nil
}

// LoginRequired 提示用户先登录
func (s *Steps) LoginRequired(_ context.Context, _ State) (Update, error) {
	return Update{
		Messages: []string{MsgLoginRequired},
		NextStep: Some(NextStepEnd),
	}, nil
}

// BuildOrderPayload 由状态构造下单请求。单价优先使用折后价，运费为 0。
func BuildOrderPayload(state State, defaultPayment string) commerce.OrderPayload {
	product := state.Product
	price := product.UnitPrice()
	quantity := state.Quantity
	if quantity == 0 {
		quantity = 1
	}
	total := price * float64(quantity)

	payment := state.PaymentMethod
	if payment == "" {
		payment = defaultPayment
	}

	var address commerce.Address
	if state.Address != nil {
		address = *state.Address
	}

	return commerce.OrderPayload{
		OrderItems: []commerce.OrderItem{{
			Product:  product.IDHex(),
			Name:     product.Name,
			Price:    price,
			Image:    product.PrimaryImage(),
			Quantity: quantity,
		}},
		ShippingAddress: address,
		PaymentMethod:   payment,
		ItemsPrice:      total,
		ShippingPrice:   0,
		TotalPrice:      total,
	}
}
