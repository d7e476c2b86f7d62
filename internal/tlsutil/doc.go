// Package tlsutil 提供集中式 TLS 配置，
// 为分发器默认的 HTTP 客户端提供安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
