// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、工作流、
外部依赖、LLM、缓存与数据库六个维度。

# 概述

Collector 通过 promauto 将所有指标注册到默认 registry，按 namespace 隔离。
它同时实现 workflow.Observer、llm.MetricsRecorder 与 cache.HitRecorder，
由 cmd/shopagent 在启动时注入到各组件。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - 工作流指标：运行结果计数、运行耗时、节点耗时、节点跳转计数。
  - 外部依赖指标：commerce / catalog 调用次数与耗时。
  - LLM 指标：请求总数、耗时、Token 用量（prompt/completion）。
  - 缓存指标：命中与未命中计数。
  - 数据库指标：活跃/空闲连接数、查询耗时。
*/
package metrics
