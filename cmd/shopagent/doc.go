// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 shopagent 服务端程序入口。

# 概述

cmd/shopagent 装配购物助手的全部组件并对外提供 HTTP API：
MongoDB 商品目录、Redis 过滤条件缓存、commerce 用户/订单服务、
OpenAI 兼容 LLM、可选的运行审计数据库，以及 Prometheus 与 OpenTelemetry。

# 核心类型

  - Server      — 主服务器，管理业务与 Metrics 双端口及优雅关闭
  - Middleware  — HTTP 中间件函数签名 func(http.Handler) http.Handler

# 路由

  - POST /agent/chat   对话式购物助手
  - POST /ai/search    自然语言商品搜索
  - GET  /admin/runs   最近运行审计（启用审计库时注册，配置 API Key 后需 X-API-Key）
  - GET  /health       存活检查
  - GET  /ready        依赖就绪检查

# 主要能力

  - 子命令：serve（启动服务）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、
    Metrics、RequestLogger、CORS、RateLimiter（基于 IP）、APIKeyAuth
  - 优雅关闭：SIGINT/SIGTERM → 关闭 HTTP → 关闭 Metrics → 断开外部连接 → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
