// Package generator 使用 LLM 为搜索结果生成简短的导购回复。
// 任何 Provider 错误都降级为固定文案，不向调用方返回错误。
package generator
