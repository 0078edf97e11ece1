// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package extractor 把自由文本的商品查询转换为结构化的 catalog.Filters。

# 流程

 1. 以 sha256(query) 为键查询 Redis 缓存，命中直接返回
 2. 相同查询的并发请求通过 singleflight 合并为一次 LLM 调用
 3. 以 temperature 0 调用 LLM，剥离 markdown 代码块后解析 JSON
 4. 价格转为整数（无法解析置空），类别按同义词表归一
 5. 成功解析的结果写回缓存

# 错误语义

LLM 返回非法 JSON 时得到空过滤条件（软失败）；Provider 传输错误
原样返回给调用方（硬失败）。缓存读写错误只记日志。
*/
package extractor
