package extractor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/BaSui01/shopagent/catalog"
)

// categoryAliases 类别同义词（小写精确匹配）
var categoryAliases = map[string]string{
	"phone":      "Mobile",
	"mobile":     "Mobile",
	"cellphone":  "Mobile",
	"smartphone": "Mobile",
	"laptop":     "Laptops",
	"notebook":   "Laptops",
	"shoe":       "Shoes",
	"sneaker":    "Shoes",
}

// NormalizeCategory 将已知同义词映射为目录中的类别名，未知类别原样返回
func NormalizeCategory(category string) string {
	if mapped, ok := categoryAliases[strings.ToLower(category)]; ok {
		return mapped
	}
	return category
}

// StripCodeFence 去掉模型输出外层的 ```json ... ``` 包裹
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// ParseFilters 解析模型输出。返回值 ok 为 false 表示输出不是合法 JSON 对象，
// 此时 Filters 为空。
func ParseFilters(content string) (catalog.Filters, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &raw); err != nil || raw == nil {
		return catalog.Filters{}, false
	}

	f := catalog.Filters{
		Brand:        asString(raw["brand"]),
		ExcludeBrand: asString(raw["exclude_brand"]),
		PriceMin:     asPrice(raw["price_min"]),
		PriceMax:     asPrice(raw["price_max"]),
		Features:     asStrings(raw["features"]),
	}
	if category := asString(raw["category"]); category != "" {
		f.Category = NormalizeCategory(category)
	}
	return f, true
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asStrings(v any) []string {
	switch vv := v.(type) {
	case string:
		if s := strings.TrimSpace(vv); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// asPrice 数值取整数部分，字符串必须是整数字面量，其余情况为 nil
func asPrice(v any) *int {
	switch vv := v.(type) {
	case float64:
		if math.IsNaN(vv) || math.IsInf(vv, 0) {
			return nil
		}
		n := int(vv)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(vv))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}
