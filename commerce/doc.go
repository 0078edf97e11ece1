// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package commerce 是电商后端用户/订单 REST API 的客户端。

# 接口

  - GetCurrentUser：GET {base}/api/user/me，Bearer 鉴权，200 时响应体为 {"user": {...}}
  - CreateOrder：POST {base}/api/order/createOrder，201 时响应体可能包含 order._id

两个方法都原样返回状态码与响应体，由调用方决定如何解释非 2xx 响应；
只有传输层错误（网络、超时、取消）以 error 返回。Client 可并发使用。

SubjectHint 在不校验签名的前提下读取 JWT 的 sub/id/_id，仅用于日志关联。
*/
package commerce
