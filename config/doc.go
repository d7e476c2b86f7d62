// Package config 提供 fetchup 的配置管理功能。
//
// 包含分发器、传输层、日志、遥测与指标配置的加载与校验，
// 支持从 YAML 文件和环境变量加载配置。
package config
