package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/shopagent/internal/ctxkeys"
	"github.com/BaSui01/shopagent/internal/tlsutil"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	userMePath      = "/api/user/me"
	createOrderPath = "/api/order/createOrder"

	// maxBodyBytes 响应体读取上限
	maxBodyBytes = 1 << 20
)

// CallRecorder 记录外部调用，metrics.Collector 实现该接口
type CallRecorder interface {
	RecordDependencyCall(service, operation, status string, duration time.Duration)
}

// Config 客户端配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client commerce REST 客户端
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	metrics CallRecorder
	logger  *zap.Logger
}

// Option 可选配置
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCallRecorder 注入调用指标
func WithCallRecorder(r CallRecorder) Option {
	return func(c *Client) { c.metrics = r }
}

// NewClient 创建客户端
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    tlsutil.SecureHTTPClient(timeout),
		tracer:  otel.Tracer("shopagent/commerce"),
		logger:  logger.With(zap.String("component", "commerce")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCurrentUser 查询 token 对应的用户
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*Response, error) {
	return c.do(ctx, "get_current_user", http.MethodGet, userMePath, token, nil)
}

// CreateOrder 创建订单
func (c *Client) CreateOrder(ctx context.Context, token string, payload OrderPayload) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode order payload: %w", err)
	}
	return c.do(ctx, "create_order", http.MethodPost, createOrderPath, token, body)
}

// Ping 探测后端是否可达，任何 HTTP 响应都视为可达
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body []byte) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "commerce."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.send(ctx, method, path, token, body)
	duration := time.Since(start)

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if c.metrics != nil {
		c.metrics.RecordDependencyCall("commerce", op, status, duration)
	}

	logger := c.logger.With(
		zap.String("operation", op),
		zap.String("subject", SubjectHint(token)),
		zap.Duration("duration", duration),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("commerce call failed", zap.Error(err))
		return nil, err
	}
	logger.Debug("commerce call completed", zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctxkeys.RequestID(ctx); ok {
		req.Header.Set(ctxkeys.RequestIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: data}, nil
}

// SubjectHint 读取 JWT 中的 sub/id/_id，不校验签名。解析失败返回 ""。
func SubjectHint(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"sub", "id", "_id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
