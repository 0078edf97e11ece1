// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package workflow 提供基于状态图的编排与执行引擎。

# 概述

workflow 包实现了一个 LangGraph 风格的有向状态图：节点（Step）读取当前状态并返回
稀疏的部分更新，执行器负责把更新合并进状态，然后通过静态边或条件路由决定下一个节点，
直到到达终止标记 END。

# 核心类型

  - StateGraph[S, U]    — 图构建器（AddNode / AddEdge / AddConditionalEdges / SetEntryPoint）
  - CompiledGraph[S, U] — 编译后的不可变拓扑（入口检查、出边检查、环检测）
  - Executor[S, U]      — 单次运行执行器（zap 日志、OpenTelemetry span、Observer 指标回调）
  - Result[S]           — 最终状态 + 访问路径 + ExecutionHistory
  - Reducer[T]          — 字段合并原语（LastValueReducer、AppendReducer）

# 执行语义

  - 节点严格顺序执行，单次运行内不存在并发
  - 节点返回 error 时整个运行失败，不返回部分结果
  - 路由函数返回的 key 不在 path map 中视为硬错误
  - 步数预算（默认 25）防止异常拓扑导致无限运行

# 使用示例

	g := workflow.NewStateGraph[State, Update]("checkout", State.Apply).
		AddNode("a", stepA).
		AddNode("b", stepB).
		AddConditionalEdges("a", route, map[string]string{"next": "b", "stop": workflow.END}).
		AddEdge("b", workflow.END).
		SetEntryPoint("a")

	compiled, err := g.Compile()
	exec := workflow.NewExecutor(compiled, workflow.WithLogger(logger))
	result, err := exec.Run(ctx, initial)
*/
package workflow
