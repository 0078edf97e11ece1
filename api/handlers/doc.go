// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 shopagent HTTP API 的请求处理器实现。

# 核心类型

  - ChatHandler    — POST /agent/chat，执行购物助手工作流并写运行审计
  - SearchHandler  — POST /ai/search，自然语言商品搜索
  - RunsHandler    — GET /admin/runs，查询最近的运行审计
  - HealthHandler  — /health 存活检查与 /ready 依赖检查
  - Response       — 统一错误/成功包装结构（success + data + error + timestamp）
  - ResponseWriter — 包装 http.ResponseWriter 以捕获状态码与响应大小

# 主要能力

  - WriteJSON / WriteSuccess / WriteError / WriteFailure 响应辅助函数
  - DecodeJSONBody（1 MB 限制）、ValidateContentType
  - ErrorCode → HTTP 状态码映射，超时统一映射为 504
  - /ready 通过 errgroup 并发执行所有 HealthCheck
*/
package handlers
