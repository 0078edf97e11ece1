// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package database 提供基于 GORM 的连接池管理，供运行审计存储使用。

# 核心类型

  - PoolManager：持有 GORM 实例与底层 sql.DB，提供 DB/Ping/Stats/Close
    与 WithTransaction。后台健康检查定时探活并通过 StatsRecorder 上报连接数。
  - PoolConfig：最大空闲/打开连接数、生命周期与健康检查间隔。
  - Dialector / Open：按驱动名选择 postgres 或纯 Go 的 sqlite 实现。
*/
package database
