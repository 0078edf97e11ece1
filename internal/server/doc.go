// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package server 提供 HTTP 服务器生命周期管理：非阻塞启动、优雅关闭与错误传播。

# 核心类型

  - Manager：封装 http.Server 与 net.Listener。shopagent 启动两个实例，
    api（业务路由）与 metrics（/metrics）。
  - Config：监听地址、读写/空闲超时、请求头上限与关闭超时。

# 使用方式

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	m := server.NewManager("api", handler, cfg, logger)
	if err := m.Start(); err != nil { ... }
	err := m.Wait(ctx)
*/
package server
