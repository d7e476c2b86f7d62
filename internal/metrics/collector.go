// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。nil *Collector 的所有方法都是空操作。
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	batchSize       prometheus.Histogram
	inFlight        prometheus.Gauge
	abortsTotal     prometheus.Counter
	dispatchErrors  prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时注册到 prometheus 默认 registry。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of settled requests by outcome",
		},
		[]string{"method", "outcome"},
	)

	c.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from issue to settlement of a single request",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	c.batchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of descriptors per dispatch call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	c.inFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight",
			Help:      "Requests issued and not yet settled",
		},
	)

	c.abortsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aborts_total",
			Help:      "Number of cancellation signals fired",
		},
	)

	c.dispatchErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_errors_total",
			Help:      "Dispatch calls that failed outside per-request handling",
		},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 请求指标记录
// =============================================================================

// RecordRequest 记录一次已落定的请求。rejected 为 true 时 status 被忽略。
func (c *Collector) RecordRequest(method string, status int, rejected bool, duration time.Duration) {
	if c == nil {
		return
	}
	outcome := "rejected"
	if !rejected {
		outcome = statusClass(status)
	}
	c.requestsTotal.WithLabelValues(method, outcome).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordBatch 记录单次分发的描述符数量
func (c *Collector) RecordBatch(size int) {
	if c == nil {
		return
	}
	c.batchSize.Observe(float64(size))
}

// RequestStarted 在请求发出时调用
func (c *Collector) RequestStarted() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

// RequestSettled 在请求落定时调用
func (c *Collector) RequestSettled() {
	if c == nil {
		return
	}
	c.inFlight.Dec()
}

// RecordAbort 记录一次取消信号的触发
func (c *Collector) RecordAbort() {
	if c == nil {
		return
	}
	c.abortsTotal.Inc()
}

// RecordDispatchError 记录一次编排层面的异常
func (c *Collector) RecordDispatchError() {
	if c == nil {
		return
	}
	c.dispatchErrors.Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusClass 将 HTTP 状态码转换为字符串
func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
