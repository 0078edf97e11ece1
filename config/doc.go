// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package config 提供 shopagent 的配置加载与校验。

# 加载顺序

默认值 → YAML 文件 → 环境变量（SHOPAGENT_ 前缀，按结构体 env tag 递归拼接）。
另外兼容旧部署使用的 MONGO_URL、DATABASE_NAME、OPENAI_API_KEY、FT_API_URL
四个环境变量，优先级低于带前缀的变量。

# 配置分区

server、agent、commerce、mongo、redis、database（审计库）、llm、
extractor、generator、log、telemetry。Config.Validate 汇总所有错误一次性返回。
*/
package config
