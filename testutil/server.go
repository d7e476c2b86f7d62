package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// 🌐 测试 HTTP 服务
// =============================================================================

// NewJSONServer 启动一个总是返回 status 和 body 的服务，测试结束时自动关闭。
func NewJSONServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// NewDelayedServer 启动一个按路径延迟响应的服务。
// 延迟由 delay(path) 决定，响应体为 {"path":"<path>"}。
func NewDelayedServer(t *testing.T, delay func(path string) time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := delay(r.URL.Path); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// BlockingServer 在 Release 之前挂起所有请求。
type BlockingServer struct {
	*httptest.Server

	arrived atomic.Int64
	release chan struct{}
	once    sync.Once
}

// NewBlockingServer 启动阻塞服务。Cleanup 会先放行挂起的请求再关闭服务。
func NewBlockingServer(t *testing.T) *BlockingServer {
	t.Helper()
	bs := &BlockingServer{release: make(chan struct{})}
	bs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs.arrived.Add(1)
		select {
		case <-bs.release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"released":true}`))
	}))
	t.Cleanup(func() {
		bs.Release()
		bs.Server.Close()
	})
	return bs
}

// Arrived 返回已到达服务端的请求数
func (bs *BlockingServer) Arrived() int {
	return int(bs.arrived.Load())
}

// Release 放行所有挂起及后续请求，可重复调用
func (bs *BlockingServer) Release() {
	bs.once.Do(func() { close(bs.release) })
}

// UnreachableURL 返回一个已关闭服务的地址，连接必然失败。
func UnreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	return addr
}
