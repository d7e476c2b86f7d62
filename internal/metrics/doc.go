// 版权所有 2024 fetchup Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的请求分发指标采集能力。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
注册到调用方指定的 Registerer（默认为全局 registry）。所有指标按
namespace 隔离。

# 主要能力

  - 请求指标：已落定请求总数（按 method 与 outcome 分组，outcome
    为 2xx/3xx/4xx/5xx/rejected）、请求耗时。
  - 分发指标：每次分发的批大小、在途请求数、取消信号触发次数、
    编排层异常次数。
*/
package metrics
