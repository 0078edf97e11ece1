package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/commerce"
	"github.com/BaSui01/shopagent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// =============================================================================
// 🧪 测试替身
// =============================================================================

type stubUsers struct {
	resp  *commerce.Response
	err   error
	calls int
}

func (s *stubUsers) GetCurrentUser(context.Context, string) (*commerce.Response, error) {
	s.calls++
	return s.resp, s.err
}

type stubOrders struct {
	mu      sync.Mutex
	resp    *commerce.Response
	err     error
	payload *commerce.OrderPayload
	calls   int
}

func (s *stubOrders) CreateOrder(_ context.Context, _ string, p commerce.OrderPayload) (*commerce.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.payload = &p
	return s.resp, s.err
}

type stubExtractor struct {
	filters catalog.Filters
	err     error
	calls   int
}

func (s *stubExtractor) Extract(context.Context, string) (catalog.Filters, error) {
	s.calls++
	return s.filters, s.err
}

type stubCatalog struct {
	products []catalog.Product
	err      error
	calls    int
}

func (s *stubCatalog) Search(context.Context, catalog.Filters) ([]catalog.Product, error) {
	s.calls++
	return s.products, s.err
}

func (s *stubCatalog) SearchByBrand(context.Context, string) ([]catalog.Product, error) {
	return nil, errors.New("not used by the agent")
}

func discounted(v float64) *float64 { return &v }

// =============================================================================
// 🔐 check_login
// =============================================================================

func TestCheckLogin_NoToken(t *testing.T) {
	users := &stubUsers{}
	steps := NewSteps(Dependencies{Users: users}, nil)

	u, err := steps.CheckLogin(context.Background(), State{})
	require.NoError(t, err)
	assert.True(t, u.UserInfo.Set)
	assert.Nil(t, u.UserInfo.Value)
	assert.Equal(t, 0, users.calls)
}

func TestCheckLogin(t *testing.T) {
	tests := []struct {
		name     string
		users    *stubUsers
		wantUser bool
	}{
		{"ok", &stubUsers{resp: &commerce.Response{StatusCode: 200, Body: []byte(`{"user":{"_id":"u1"}}`)}}, true},
		{"unauthorized", &stubUsers{resp: &commerce.Response{StatusCode: 401, Body: []byte(`{"message":"bad token"}`)}}, false},
		{"network error", &stubUsers{err: errors.New("connection refused")}, false},
		{"malformed body", &stubUsers{resp: &commerce.Response{StatusCode: 200, Body: []byte(`<html>`)}}, false},
		{"missing user", &stubUsers{resp: &commerce.Response{StatusCode: 200, Body: []byte(`{}`)}}, false},
		{"empty user", &stubUsers{resp: &commerce.Response{StatusCode: 200, Body: []byte(`{"user":{}}`)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := NewSteps(Dependencies{Users: tt.users}, nil)

			u, err := steps.CheckLogin(context.Background(), State{Token: "tok"})
			require.NoError(t, err)
			assert.True(t, u.UserInfo.Set)
			assert.Equal(t, tt.wantUser, u.UserInfo.Value != nil)
			assert.Equal(t, 1, tt.users.calls)
		})
	}
}

// =============================================================================
// 🔍 search_product
// =============================================================================

func TestSearchProduct_FirstHit(t *testing.T) {
	cat := &stubCatalog{products: []catalog.Product{{Name: "iPhone 15"}, {Name: "iPhone 14"}}}
	steps := NewSteps(Dependencies{Extractor: &stubExtractor{}, Catalog: cat}, nil)

	u, err := steps.SearchProduct(context.Background(), State{Query: "iphone"})
	require.NoError(t, err)
	require.NotNil(t, u.Product.Value)
	assert.Equal(t, "iPhone 15", u.Product.Value.Name)
	assert.Equal(t, []string{"Found iPhone 15"}, u.Messages)
}

func TestSearchProduct_NotFound(t *testing.T) {
	steps := NewSteps(Dependencies{Extractor: &stubExtractor{}, Catalog: &stubCatalog{}}, nil)

	u, err := steps.SearchProduct(context.Background(), State{Query: "unicorn"})
	require.NoError(t, err)
	assert.True(t, u.Product.Set)
	assert.Nil(t, u.Product.Value)
	assert.Equal(t, []string{MsgProductNotFound}, u.Messages)
}

func TestSearchProduct_HardFailures(t *testing.T) {
	steps := NewSteps(Dependencies{Extractor: &stubExtractor{err: errors.New("llm down")}, Catalog: &stubCatalog{}}, nil)
	_, err := steps.SearchProduct(context.Background(), State{Query: "x"})
	assert.ErrorContains(t, err, "llm down")

	steps = NewSteps(Dependencies{Extractor: &stubExtractor{}, Catalog: &stubCatalog{err: errors.New("mongo down")}}, nil)
	_, err = steps.SearchProduct(context.Background(), State{Query: "x"})
	assert.Equal(t, types.ErrCatalogUnavailable, types.GetErrorCode(err))
}

// =============================================================================
// 📦 check_stock / collect_info
// =============================================================================

func TestCheckStock(t *testing.T) {
	steps := NewSteps(Dependencies{}, nil)
	ctx := context.Background()

	u, _ := steps.CheckStock(ctx, State{})
	assert.Equal(t, []string{MsgNoProductSelected}, u.Messages)
	assert.Equal(t, Some(NextStepEnd), u.NextStep)

	u, _ = steps.CheckStock(ctx, State{Product: &catalog.Product{Name: "iPhone", Stock: 3}})
	assert.Equal(t, []string{"iPhone is in stock."}, u.Messages)
	assert.False(t, u.NextStep.Set)

	for _, stock := range []int{0, -1} {
		u, _ = steps.CheckStock(ctx, State{Product: &catalog.Product{Name: "iPhone", Stock: stock}})
		assert.Equal(t, []string{MsgOutOfStock}, u.Messages)
		assert.Equal(t, Some(NextStepEnd), u.NextStep)
	}
}

func TestCollectInfo(t *testing.T) {
	steps := NewSteps(Dependencies{}, nil)

	u, err := steps.CollectInfo(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, Some(1), u.Quantity)
	assert.Equal(t, Some(DefaultPaymentMethod), u.PaymentMethod)
	assert.Equal(t, PlaceholderAddress(), u.Address.Value)

	custom := &commerce.Address{Address: "1 Real Rd", City: "Pune", PostalCode: "411001", Country: "India"}
	u, err = steps.CollectInfo(context.Background(), State{Quantity: 2, PaymentMethod: "CARD", Address: custom})
	require.NoError(t, err)
	assert.False(t, u.Quantity.Set)
	assert.False(t, u.PaymentMethod.Set)
	assert.Equal(t, PlaceholderAddress(), u.Address.Value)
}

func TestCollectInfo_ConfiguredPayment(t *testing.T) {
	steps := NewSteps(Dependencies{}, nil, WithDefaultPaymentMethod("UPI"), WithDefaultPaymentMethod(""))

	u, err := steps.CollectInfo(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, "UPI", u.PaymentMethod.Value)
}

// =============================================================================
// 🧾 create_order
// =============================================================================

func orderReadyState() State {
	return State{
		Token:    "tok",
		UserInfo: map[string]any{"_id": "u1"},
		Product: &catalog.Product{
			ID:                       catalog.NewProductID(bson.NewObjectID()),
			Name:                     "iPhone 15",
			Price:                    1200,
			TotalAmountAfterDiscount: discounted(1000),
			Images:                   []string{"a.jpg", "b.jpg"},
			Stock:                    5,
		},
		Quantity:      2,
		Address:       PlaceholderAddress(),
		PaymentMethod: "COD",
	}
}

func TestCreateOrder_MissingInfo(t *testing.T) {
	mutations := map[string]func(*State){
		"no user":    func(s *State) { s.UserInfo = nil },
		"no product": func(s *State) { s.Product = nil },
		"no token":   func(s *State) { s.Token = "" },
		"no address": func(s *State) { s.Address = nil },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			orders := &stubOrders{}
			steps := NewSteps(Dependencies{Orders: orders}, nil)
			s := orderReadyState()
			mutate(&s)

			u, err := steps.CreateOrder(context.Background(), s)
			require.NoError(t, err)
			assert.Equal(t, []string{MsgMissingOrderInfo}, u.Messages)
			assert.False(t, u.NextStep.Set)
			assert.Equal(t, 0, orders.calls)
		})
	}
}

func TestCreateOrder_Created(t *testing.T) {
	orders := &stubOrders{resp: &commerce.Response{StatusCode: 201, Body: []byte(`{"order":{"_id":"order_123"}}`)}}
	steps := NewSteps(Dependencies{Orders: orders}, nil)
	s := orderReadyState()

	u, err := steps.CreateOrder(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{MsgOrderCreated, "Order ID: order_123"}, u.Messages)
	assert.Equal(t, Some(NextStepEnd), u.NextStep)
	assert.Equal(t, Some("order_123"), u.OrderID)

	require.NotNil(t, orders.payload)
	p := orders.payload
	require.Len(t, p.OrderItems, 1)
	assert.Equal(t, s.Product.IDHex(), p.OrderItems[0].Product)
	assert.Equal(t, 1000.0, p.OrderItems[0].Price)
	assert.Equal(t, "a.jpg", p.OrderItems[0].Image)
	assert.Equal(t, 2, p.OrderItems[0].Quantity)
	assert.Equal(t, 2000.0, p.ItemsPrice)
	assert.Equal(t, 2000.0, p.TotalPrice)
	assert.Equal(t, 0.0, p.ShippingPrice)
	assert.Equal(t, "COD", p.PaymentMethod)
	assert.Equal(t, "Tech City", p.ShippingAddress.City)
}

func TestCreateOrder_CreatedWithoutID(t *testing.T) {
	orders := &stubOrders{resp: &commerce.Response{StatusCode: 201, Body: []byte(`{"ok":true}`)}}
	steps := NewSteps(Dependencies{Orders: orders}, nil)

	u, err := steps.CreateOrder(context.Background(), orderReadyState())
	require.NoError(t, err)
	assert.Equal(t, []string{MsgOrderCreated, "Order ID: created"}, u.Messages)
	assert.Equal(t, Some("created"), u.OrderID)
}

func TestCreateOrder_Rejected(t *testing.T) {
	orders := &stubOrders{resp: &commerce.Response{StatusCode: 400, Body: []byte(`{"message":"out of stock"}`)}}
	steps := NewSteps(Dependencies{Orders: orders}, nil)

	u, err := steps.CreateOrder(context.Background(), orderReadyState())
	require.NoError(t, err)
	assert.Equal(t, []string{`Failed to create order: {"message":"out of stock"}`}, u.Messages)
	assert.Equal(t, Some(NextStepEnd), u.NextStep)
	assert.False(t, u.OrderID.Set)
}

func TestCreateOrder_TransportError(t *testing.T) {
	orders := &stubOrders{err: errors.New("dial tcp: timeout")}
	steps := NewSteps(Dependencies{Orders: orders}, nil)

	u, err := steps.CreateOrder(context.Background(), orderReadyState())
	require.NoError(t, err)
	assert.Equal(t, []string{"Error creating order: dial tcp: timeout"}, u.Messages)
	assert.Equal(t, Some(NextStepEnd), u.NextStep)
}

func TestBuildOrderPayload_Defaults(t *testing.T) {
	s := orderReadyState()
	s.Product.TotalAmountAfterDiscount = nil
	s.Product.Images = nil
	s.Quantity = 0
	s.PaymentMethod = ""

	p := BuildOrderPayload(s, "COD")
	assert.Equal(t, 1200.0, p.OrderItems[0].Price)
	assert.Equal(t, "", p.OrderItems[0].Image)
	assert.Equal(t, 1, p.OrderItems[0].Quantity)
	assert.Equal(t, 1200.0, p.TotalPrice)
	assert.Equal(t, "COD", p.PaymentMethod)
}

func TestLoginRequired(t *testing.T) {
	u, err := NewSteps(Dependencies{}, nil).LoginRequired(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, []string{MsgLoginRequired}, u.Messages)
	assert.Equal(t, Some(NextStepEnd), u.NextStep)
}
