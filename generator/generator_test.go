package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	resp *llm.ChatResponse
	err  error
	last *llm.ChatRequest
}

func (s *stubProvider) Completion(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.last = req
	return s.resp, s.err
}

func (s *stubProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (s *stubProvider) Name() string { return "stub" }

func reply(text string) *llm.ChatResponse {
	return &llm.ChatResponse{Choices: []llm.ChatChoice{{Message: llm.Message{Content: text}}}}
}

func floatPtr(v float64) *float64 { return &v }

func products(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		out[i] = catalog.Product{Name: "Phone " + string(rune('A'+i)), Slug: "phone-" + string(rune('a'+i)), Price: 100}
	}
	return out
}

func TestGenerate_Success(t *testing.T) {
	p := &stubProvider{resp: reply("  Check out Phone A!  ")}
	g := New(p, DefaultConfig(), nil)

	msg := g.Generate(context.Background(), "cheap phone", products(2), catalog.Filters{Category: "Mobile"})
	assert.Equal(t, "Check out Phone A!", msg)

	require.NotNil(t, p.last)
	assert.Equal(t, "gpt-4o-mini", p.last.Model)
	assert.Equal(t, float32(0.7), p.last.Temperature)
	assert.Equal(t, 150, p.last.MaxTokens)
	require.Len(t, p.last.Messages, 2)
	assert.Equal(t, llm.RoleSystem, p.last.Messages[0].Role)
	assert.Equal(t, "You are a helpful shopping assistant.", p.last.Messages[0].Content)

	prompt := p.last.Messages[1].Content
	assert.Contains(t, prompt, `"Infinite Mart"`)
	assert.Contains(t, prompt, `User Query: "cheap phone"`)
	assert.Contains(t, prompt, `Filters extracted: {"category":"Mobile"}`)
	assert.Contains(t, prompt, "1. Phone A - Price: 100 (Slug: phone-a)")
}

func TestGenerate_FallbackOnError(t *testing.T) {
	g := New(&stubProvider{err: errors.New("upstream down")}, Config{}, nil)
	assert.Equal(t, FallbackMessage, g.Generate(context.Background(), "q", nil, nil))
}

func TestGenerate_FallbackOnEmptyContent(t *testing.T) {
	g := New(&stubProvider{resp: reply("   ")}, Config{}, nil)
	assert.Equal(t, FallbackMessage, g.Generate(context.Background(), "q", nil, nil))

	g = New(&stubProvider{resp: &llm.ChatResponse{}}, Config{}, nil)
	assert.Equal(t, FallbackMessage, g.Generate(context.Background(), "q", nil, nil))
}

func TestProductContext(t *testing.T) {
	assert.Equal(t, NoProductsContext, ProductContext(nil, 5))

	ctx := ProductContext(products(7), 5)
	assert.Contains(t, ctx, "5. Phone E")
	assert.NotContains(t, ctx, "6. Phone F")

	discounted := []catalog.Product{{Name: "Pixel", Slug: "pixel", Price: 500, TotalAmountAfterDiscount: floatPtr(449.5)}}
	assert.Equal(t, "1. Pixel - Price: 449.5 (Slug: pixel)\n", ProductContext(discounted, 5))
}

func TestNew_Overrides(t *testing.T) {
	g := New(&stubProvider{}, Config{Model: "m", Temperature: 0.1, MaxTokens: 50, TopProducts: 3}, nil)
	assert.Equal(t, Config{Model: "m", Temperature: 0.1, MaxTokens: 50, TopProducts: 3}, g.cfg)
	assert.Contains(t, g.BuildPrompt("q", nil, map[string]any{"brand": "Apple", "fallback": true}), `{"brand":"Apple","fallback":true}`)
}
