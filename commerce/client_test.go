package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/shopagent/internal/ctxkeys"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) RecordDependencyCall(service, operation, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, service+"/"+operation+"/"+status)
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, zap.NewNop(), opts...)
}

func TestClient_GetCurrentUser(t *testing.T) {
	rec := &callRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/user/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user":{"_id":"u1","name":"Asha"}}`))
	}, WithCallRecorder(rec))

	resp, err := c.GetCurrentUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user, err := resp.User()
	require.NoError(t, err)
	assert.Equal(t, "Asha", user["name"])
	assert.Equal(t, []string{"commerce/get_current_user/200"}, rec.calls)
}

func TestClient_ForwardsRequestID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-7", r.Header.Get(ctxkeys.RequestIDHeader))
		_, _ = w.Write([]byte(`{"user":{}}`))
	})

	_, err := c.GetCurrentUser(ctxkeys.WithRequestID(context.Background(), "req-7"), "tok")
	require.NoError(t, err)
}

func TestClient_GetCurrentUserUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	})

	resp, err := c.GetCurrentUser(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, `{"message":"invalid token"}`, resp.Text())
}

func TestClient_CreateOrder(t *testing.T) {
	var got OrderPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/order/createOrder", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"_id":"order_123"}}`))
	})

	payload := OrderPayload{
		OrderItems:      []OrderItem{{Product: "p1", Name: "iPhone", Price: 999, Quantity: 2}},
		ShippingAddress: Address{Address: "123 Main St", City: "Tech City", PostalCode: "123456", Country: "India"},
		PaymentMethod:   "COD",
		ItemsPrice:      1998,
		TotalPrice:      1998,
	}
	resp, err := c.CreateOrder(context.Background(), "tok", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "order_123", resp.OrderID())
	assert.Equal(t, payload, got)
}

func TestClient_PayloadWireFormat(t *testing.T) {
	data, err := json.Marshal(OrderPayload{
		OrderItems:      []OrderItem{{Product: "p", Name: "n", Price: 1, Image: "", Quantity: 1}},
		ShippingAddress: Address{PostalCode: "1"},
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"orderItems", "shippingAddress", "paymentMethod", "itemsPrice", "shippingPrice", "totalPrice"} {
		assert.Contains(t, raw, key)
	}
	item := raw["orderItems"].([]any)[0].(map[string]any)
	assert.Contains(t, item, "image")
	assert.Contains(t, raw["shippingAddress"], "postalCode")
}

func TestClient_TransportError(t *testing.T) {
	rec := &callRecorder{}
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil, WithCallRecorder(rec))

	_, err := c.GetCurrentUser(context.Background(), "tok")
	assert.Error(t, err)
	assert.Equal(t, []string{"commerce/get_current_user/error"}, rec.calls)
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.CreateOrder(ctx, "tok", OrderPayload{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, c.Ping(context.Background()))

	down := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.Error(t, down.Ping(context.Background()))
}

func TestResponse_OrderID(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"order":{"_id":"abc"}}`, "abc"},
		{`{"order":{}}`, ""},
		{`{"success":true}`, ""},
		{`{"order":{"_id":42}}`, "42"},
		{`not json`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Response{Body: []byte(tt.body)}).OrderID(), tt.body)
	}
}

func TestResponse_User(t *testing.T) {
	user, err := (&Response{Body: []byte(`{"user":null}`)}).User()
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = (&Response{Body: []byte(`<html>`)}).User()
	assert.Error(t, err)
}

func TestSubjectHint(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, "u1", SubjectHint(sign(jwt.MapClaims{"sub": "u1"})))
	assert.Equal(t, "u2", SubjectHint(sign(jwt.MapClaims{"id": "u2"})))
	assert.Equal(t, "u3", SubjectHint(sign(jwt.MapClaims{"_id": "u3"})))
	assert.Equal(t, "", SubjectHint(sign(jwt.MapClaims{"role": "admin"})))
	assert.Equal(t, "", SubjectHint("opaque-token"))
	assert.Equal(t, "", SubjectHint(""))
}
