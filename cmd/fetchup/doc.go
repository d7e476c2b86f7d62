// Copyright (c) fetchup Authors.
// Licensed under the MIT License.

/*
Package main 提供 fetchup 命令行程序入口。

# 概述

cmd/fetchup 并发请求一个或多个地址，等待全部落定后把每个结果
以 JSON Envelope 形式输出到 stdout。程序支持 YAML 配置文件加载、
结构化日志（zap）、OpenTelemetry 追踪以及可选的 Prometheus 指标。

# 主要能力

  - 子命令：get（并发请求）、version、help
  - 请求选项：--method、可重复的 -H、--data，任一存在时使用结构化描述
  - 中断处理：SIGINT/SIGTERM 触发 Abort，在途请求以 rejected 落定并照常输出
  - 指标输出：Metrics.Enabled 时将本次运行的指标以文本格式写入 stderr
  - 退出码：全部 fulfilled 为 0，存在 rejected 为 1，参数错误为 2
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
