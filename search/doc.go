// Package search 实现商品搜索流程：抽取过滤条件 → 查询目录 → 品牌兜底 →
// 排序 → 生成导购回复。
package search
