// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package llm 定义 shopagent 使用的大语言模型调用抽象。

# 概述

llm 包只保留同步 Chat Completion 所需的最小类型集合：Provider 接口、
ChatRequest / ChatResponse 消息模型以及统一的 Error 错误码。具体的 HTTP
实现位于 llm/providers/openaicompat。

# 核心接口

  - Provider             — Completion + HealthCheck + Name
  - ChatRequest          — 模型、消息列表、温度、MaxTokens
  - ChatResponse         — Choices + Usage
  - Error / ErrorCode    — 与 HTTP 状态、可重试性对齐的错误码
  - InstrumentedProvider — 为任意 Provider 增加 Prometheus 指标与日志
*/
package llm
