// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 shopagent 的工作流执行器与 HTTP 中间件提供全局 TracerProvider / MeterProvider。
// 遥测关闭时保持 noop 实现，不连接任何外部服务。
package telemetry
