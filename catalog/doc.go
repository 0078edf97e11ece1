// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package catalog 提供商品目录的查询、过滤与排序能力。

# 概述

商品存储在 MongoDB 的 products 集合中。Filters 描述从自然语言中抽取出的结构化过滤条件，
BuildQuery 将其翻译为 Mongo 查询文档，Store 负责执行查询并返回摘要投影，Rank 根据品牌
与特性关键字为结果打分排序。

# 核心类型

  - Product  — 商品记录（bson/json 双标签，_id 以十六进制字符串序列化）
  - Filters  — 结构化过滤条件（category、brand、exclude_brand、价格区间、features）
  - Searcher — 检索接口，Store 为其 MongoDB 实现
  - Rank     — 品牌完全匹配 +2，每个命中的特性关键字 +1，按分数稳定降序
*/
package catalog
