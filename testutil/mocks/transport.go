// MockTransport 的 HTTP 传输层测试模拟实现。
//
// 支持固定响应、延迟、错误注入与调用记录。
package mocks

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MockTransportCall 记录一次 Do 调用
type MockTransportCall struct {
	Method string
	URL    string
	Header http.Header
	Body   string
	Time   time.Time
}

// MockTransport 是 dispatch.Transport 的模拟实现
type MockTransport struct {
	mu sync.RWMutex

	// 响应配置
	status int
	body   string
	header http.Header
	err    error
	delay  time.Duration

	doFunc func(req *http.Request) (*http.Response, error)

	// 调用记录
	calls []MockTransportCall
}

// NewMockTransport 创建默认返回 200 和 {} 的模拟传输
func NewMockTransport() *MockTransport {
	return &MockTransport{
		status: http.StatusOK,
		body:   "{}",
		header: http.Header{"Content-Type": []string{"application/json"}},
	}
}

// --- Builder 方法 ---

// WithResponse 设置固定响应
func (m *MockTransport) WithResponse(status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.body = body
	return m
}

// WithError 设置固定错误
func (m *MockTransport) WithError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置响应延迟，延迟期间请求取消会立即返回
func (m *MockTransport) WithDelay(d time.Duration) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithDoFunc 设置自定义处理函数，优先级最高
func (m *MockTransport) WithDoFunc(fn func(req *http.Request) (*http.Response, error)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doFunc = fn
	return m
}

// --- Transport 实现 ---

// Do 实现 dispatch.Transport
func (m *MockTransport) Do(req *http.Request) (*http.Response, error) {
	m.record(req)

	m.mu.RLock()
	fn, delay, err := m.doFunc, m.delay, m.err
	status, body, header := m.status, m.body, m.header.Clone()
	m.mu.RUnlock()

	if fn != nil {
		return fn(req)
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (m *MockTransport) record(req *http.Request) {
	call := MockTransportCall{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Time:   time.Now(),
	}
	if req.Body != nil && req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			call.Body = string(data)
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// --- 查询方法 ---

// Calls 返回调用记录副本
func (m *MockTransport) Calls() []MockTransportCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockTransportCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回调用次数
func (m *MockTransport) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// LastCall 返回最后一次调用，无调用时 ok 为 false
func (m *MockTransport) LastCall() (MockTransportCall, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return MockTransportCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset 清空调用记录
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
