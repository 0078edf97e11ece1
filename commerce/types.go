package commerce

import (
	"encoding/json"
	"fmt"
)

// Address 收货地址，字段名与后端保持一致
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem 订单行
type OrderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// OrderPayload createOrder 请求体
type OrderPayload struct {
	OrderItems      []OrderItem `json:"orderItems"`
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	ItemsPrice      float64     `json:"itemsPrice"`
	ShippingPrice   float64     `json:"shippingPrice"`
	TotalPrice      float64     `json:"totalPrice"`
}

// Response 后端原始响应
type Response struct {
	StatusCode int
	Body       []byte
}

// Text 返回响应体文本
func (r *Response) Text() string {
	return string(r.Body)
}

// User 解析 {"user": {...}}，user 缺失或为 null 时返回 nil
func (r *Response) User() (map[string]any, error) {
	var body struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return body.User, nil
}

// OrderID 解析 order._id，缺失或响应体不是 JSON 时返回 ""
func (r *Response) OrderID() string {
	var body struct {
		Order struct {
			ID any `json:"_id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	switch id := body.Order.ID.(type) {
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
