// Package tlsutil 为出站 HTTP 客户端（commerce API、LLM Provider）提供统一的 TLS 加固配置：
// TLS 1.2+，仅 AEAD 密码套件，带连接池上限。
package tlsutil
