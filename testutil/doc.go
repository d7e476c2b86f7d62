// Copyright 2026 fetchup Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 fetchup 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，
避免重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 异步断言: AssertEventuallyTrue / WaitFor / WaitForChannel
  - 数据工具: MustJSON / MustParseJSON / AssertJSONEqual
  - 测试服务: NewJSONServer / NewDelayedServer / NewBlockingServer /
    UnreachableURL，基于 httptest，测试结束自动关闭

# 子包

  - testutil/mocks: MockTransport，支持 Builder 模式、调用记录与错误注入

# 使用示例

	srv := testutil.NewJSONServer(t, 200, `{"a":1}`)
	env, err := dispatch.Dispatch[map[string]int](testutil.TestContext(t), d, dispatch.URL(srv.URL))
*/
package testutil
