// Copyright 2026 fetchup Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package dispatch 提供并发 HTTP 请求分发与统一结果封装。

# 概述

Dispatcher 接收一个或多个请求描述（Descriptor），并发发出，
等待全部落定（settle-all），按输入顺序返回 Envelope。
单个请求的失败（网络错误、解码失败、中止）只体现在对应的
Envelope 中，不会影响同批次的其他请求。

# 核心类型

  - Descriptor: 请求描述，URL(addr) 或 Request(addr, Options)
  - Envelope[T]: 统一结果，Fulfilled 携带状态码与解码后的负载，
    Rejected 携带失败原因
  - Signal: 一次性广播取消信号，Abort 后不可恢复
  - Dispatcher: 持有当前信号，中止后下一次分发自动换新信号

# 使用示例

	d := dispatch.New(config.DefaultDispatcherConfig(), logger)
	envs, err := dispatch.DispatchAll[map[string]any](ctx, d, []dispatch.Descriptor{
		dispatch.URL("https://example.com/a"),
		dispatch.Request("https://example.com/b", dispatch.Options{Method: http.MethodPost}),
	})

	// 中止所有在途请求
	d.Abort()
*/
package dispatch
