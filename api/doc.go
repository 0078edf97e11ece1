// Package api 定义 shopagent HTTP API 的请求与响应结构。
//
// # API 概览
//
//   - POST /agent/chat  — 对话式购物助手（检索、库存、下单）
//   - POST /ai/search   — 自然语言商品搜索
//   - GET  /admin/runs  — 最近的工作流运行审计记录
//   - GET  /health、/ready — 存活与就绪检查
//
// # 认证
//
// /agent/chat 通过 Authorization: Bearer <token> 透传终端用户 token，由商城后端校验。
// 配置了 server.api_keys 时，/admin 下的端点还要求 X-API-Key 请求头。
//
// # 错误
//
// 失败响应统一使用 {success:false, error:{code,message,retryable}, timestamp} 结构，
// 错误码见 types.ErrorCode。
package api
