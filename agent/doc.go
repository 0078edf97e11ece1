// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package agent 实现购物助手的对话工作流。

# 概述

一次对话请求对应一次工作流运行：从 check_login 开始，依次经过意图识别、商品检索、
库存检查、信息补全与下单，每个节点返回稀疏的 Update，由 State.Apply 合并。

	check_login → analyze_intent ─┬─ order 且未登录 → login_required → END
	                              └─ 其他 → search_product ─┬─ order 且找到商品 → check_stock
	                                                        └─ 其他 → END
	check_stock ─┬─ next_step = end → END
	             └─ 其他 → collect_info → create_order → END

# 失败语义

  - 软失败：登录失败、库存不足、下单失败都写入 Messages（多数同时置 NextStep = end）
  - 硬失败：商品目录或过滤条件抽取出错时，Run 直接返回 error，不返回部分状态

# 并发

每次运行独占自己的 State。编译后的图与各协作方客户端可被多个请求并发复用。
*/
package agent
