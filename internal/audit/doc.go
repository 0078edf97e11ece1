// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package audit 记录每次购物 Agent 运行的结果，供运维排查使用。

每条 RunRecord 包含运行 ID、意图、访问路径、最终 next_step、订单号、
消息数与耗时；StepRecord 记录每个节点的状态与耗时。写入失败只记日志，
不影响请求。记录只写不读回，不作为会话状态。
*/
package audit
