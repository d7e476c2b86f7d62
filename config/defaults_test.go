package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, DispatcherConfig{}, cfg.Dispatcher)
	assert.NotEqual(t, TransportConfig{}, cfg.Transport)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.NotEqual(t, MetricsConfig{}, cfg.Metrics)
	assert.NotEmpty(t, cfg.Log.OutputPaths)
}

// --- Individual Default*Config functions ---

func TestDefaultDispatcherConfig(t *testing.T) {
	cfg := DefaultDispatcherConfig()
	assert.Equal(t, 0, cfg.MaxConcurrency, "fire all requests at once by default")
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "fetchup/1.0", cfg.UserAgent)
	assert.Equal(t, "failed to fetch", cfg.FailureReason)
}

func TestDefaultTransportConfig(t *testing.T) {
	cfg := DefaultTransportConfig()
	assert.Equal(t, time.Duration(0), cfg.Timeout, "cancellation is the only stop mechanism by default")
	assert.Equal(t, 30*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.KeepAlive)
	assert.Equal(t, 10*time.Second, cfg.TLSHandshakeTimeout)
	assert.Equal(t, 90*time.Second, cfg.IdleConnTimeout)
	assert.Equal(t, 100, cfg.MaxIdleConns)
	assert.False(t, cfg.Tracing)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "fetchup", cfg.ServiceName)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "fetchup", cfg.Namespace)
}
