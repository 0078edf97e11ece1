package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// MetricsRecorder receives one sample per completion call.
type MetricsRecorder interface {
	RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int)
}

// InstrumentedProvider decorates a Provider with metrics and debug logging.
type InstrumentedProvider struct {
	inner   Provider
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewInstrumentedProvider wraps inner. metrics may be nil.
func NewInstrumentedProvider(inner Provider, metrics MetricsRecorder, logger *zap.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{
		inner:   inner,
		metrics: metrics,
		logger:  logger.With(zap.String("component", "llm"), zap.String("provider", inner.Name())),
	}
}

func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

func (p *InstrumentedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

func (p *InstrumentedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := p.inner.Completion(ctx, req)
	duration := time.Since(start)

	model := req.Model
	status := "success"
	var usage ChatUsage
	if err != nil {
		status = "error"
		var llmErr *Error
		if errors.As(err, &llmErr) {
			status = string(llmErr.Code)
		}
		p.logger.Warn("completion failed",
			zap.String("model", model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		if resp.Model != "" {
			model = resp.Model
		}
		usage = resp.Usage
		p.logger.Debug("completion finished",
			zap.String("model", model),
			zap.Duration("duration", duration),
			zap.Int("prompt_tokens", usage.PromptTokens),
			zap.Int("completion_tokens", usage.CompletionTokens),
		)
	}

	if p.metrics != nil {
		p.metrics.RecordLLMRequest(p.inner.Name(), model, status, duration, usage.PromptTokens, usage.CompletionTokens)
	}
	return resp, err
}
