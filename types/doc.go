// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 shopagent 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包。目前只包含统一的结构化错误：
Error 携带错误码、面向用户的消息、HTTP 状态与可重试标记，api/handlers
根据错误码映射 HTTP 响应。

# 核心类型

  - ErrorCode — 请求类、依赖类、工作流类错误码
  - Error     — 结构化错误（NewError / WithCause / WithHTTPStatus / WithRetryable）
  - AsError   — 沿错误链查找 *Error
*/
package types
