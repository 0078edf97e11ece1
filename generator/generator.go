package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BaSui01/shopagent/catalog"
	"github.com/BaSui01/shopagent/llm"
	"go.uber.org/zap"
)

const (
	// FallbackMessage Provider 失败时返回的回复
	FallbackMessage = "Here are the products I found for you!"

	// NoProductsContext 没有商品时写入提示词的上下文
	NoProductsContext = "No products found matching the criteria."

	systemPrompt = "You are a helpful shopping assistant."
)

const promptTemplate = `You are a friendly and helpful AI Shopping Assistant for "Infinite Mart".

User Query: "%s"

Filters extracted: %s

Products found in database (Top %d):
%s

Task:
- Provide a helpful response to the user.
- If products were found, recommend them based on the user's query. Highlight why they might be good choices.
- If no products were found, apologize politely and suggest what else they could look for (e.g., general categories like shoes, mobiles).
- Keep the tone professional but conversational.
- Do NOT list all technical specs, just a brief summary.
- Mention 1-2 specific products by name if they are really good matches.
- Reference the "Slug" if you want to be specific, but mainly use the product Name.
- Keep the response short (under 50 words if possible, max 80 words).`

// Config 生成参数
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopProducts int
}

// DefaultConfig 返回默认生成参数
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   150,
		TopProducts: 5,
	}
}

// Generator 搜索回复生成器，可并发使用
type Generator struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// New 创建生成器。Model、MaxTokens、TopProducts 为零值时使用默认值，Temperature 原样使用
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Generator {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = def.TopProducts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "generator")),
	}
}

// Generate 生成回复；filters 以 JSON 形式写入提示词
func (g *Generator) Generate(ctx context.Context, query string, products []catalog.Product, filters any) string {
	resp, err := g.provider.Completion(ctx, &llm.ChatRequest{
		Model: g.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: g.BuildPrompt(query, products, filters)},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		g.logger.Warn("response generation failed", zap.Error(err))
		return FallbackMessage
	}

	content, err := llm.FirstContent(resp)
	if err != nil || content == "" {
		g.logger.Warn("response generation returned no content", zap.Error(err))
		return FallbackMessage
	}
	return content
}

// BuildPrompt 组装用户提示词
func (g *Generator) BuildPrompt(query string, products []catalog.Product, filters any) string {
	return fmt.Sprintf(promptTemplate, query, renderFilters(filters), g.cfg.TopProducts, ProductContext(products, g.cfg.TopProducts))
}

// ProductContext 列出前 n 个商品：名称、价格与 slug
func ProductContext(products []catalog.Product, n int) string {
	if len(products) == 0 {
		return NoProductsContext
	}
	if len(products) > n {
		products = products[:n]
	}
	var b strings.Builder
	for i := range products {
		p := &products[i]
		fmt.Fprintf(&b, "%d. %s - Price: %s (Slug: %s)\n",
			i+1, p.Name, strconv.FormatFloat(p.UnitPrice(), 'f', -1, 64), p.Slug)
	}
	return b.String()
}

func renderFilters(filters any) string {
	if filters == nil {
		return "{}"
	}
	data, err := json.Marshal(filters)
	if err != nil {
		return "{}"
	}
	return string(data)
}
