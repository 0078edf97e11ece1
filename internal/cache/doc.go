// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
包 cache 提供基于 Redis 的缓存管理能力。

# 概述

本包封装 go-redis 客户端，为过滤条件抽取等上层组件提供统一的缓存读写接口。
Manager 负责连接生命周期管理，包括初始化、后台健康检查与优雅关闭。

# 核心类型

  - Manager：缓存管理器，提供 Get/Set/Delete/Ping 基础操作，
    以及 GetJSON/SetJSON 便捷序列化方法；所有键自动加 KeyPrefix。
  - Config：地址、密码、连接池、默认 TTL 与健康检查间隔。
  - HitRecorder：命中/未命中指标回调，由 metrics.Collector 实现。

# 错误语义

  - ErrCacheMiss：键不存在或已过期
  - ErrClosed：Manager 已关闭
*/
package cache
