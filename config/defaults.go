// =============================================================================
// 📦 fetchup 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultFailureReason 是传输层未给出任何错误信息时的兜底失败原因
const DefaultFailureReason = "failed to fetch"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: DefaultDispatcherConfig(),
		Transport:  DefaultTransportConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// DefaultDispatcherConfig 返回默认分发器配置
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxConcurrency: 0,
		RateLimit:      0,
		RateBurst:      1,
		MaxBodyBytes:   10 << 20,
		UserAgent:      "fetchup/1.0",
		FailureReason:  DefaultFailureReason,
	}
}

// DefaultTransportConfig 返回默认传输层配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:             0,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		Tracing:             false,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "fetchup",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "fetchup",
	}
}
