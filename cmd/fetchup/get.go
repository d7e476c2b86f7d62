package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BaSui01/fetchup/config"
	"github.com/BaSui01/fetchup/dispatch"
	"github.com/BaSui01/fetchup/internal/metrics"
	"github.com/BaSui01/fetchup/internal/telemetry"
)

// headerFlags 收集可重复的 -H 参数
type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, ", ") }

func (h *headerFlags) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("invalid header %q, expected 'Key: Value'", v)
	}
	*h = append(*h, v)
	return nil
}

func (h headerFlags) header() http.Header {
	out := http.Header{}
	for _, kv := range h {
		k, v, _ := strings.Cut(kv, ":")
		out.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return out
}

// =============================================================================
// 🌐 get 命令
// =============================================================================

func runGet(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	method := fs.String("method", "", "HTTP method")
	data := fs.String("data", "", "Request body")
	batch := fs.Bool("batch", false, "Always print a JSON array")
	var headers headerFlags
	fs.Var(&headers, "H", "Request header 'Key: Value' (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	urls := fs.Args()
	if len(urls) == 0 {
		fmt.Fprintln(stderr, "get: at least one url is required")
		return 2
	}

	// 加载配置
	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return 1
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	providers, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	opts := []dispatch.Option{
		dispatch.WithTransport(dispatch.NewHTTPClient(cfg.Transport)),
		dispatch.WithTracerProvider(otel.GetTracerProvider()),
	}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, dispatch.WithObserver(metrics.NewCollector(cfg.Metrics.Namespace, reg, logger)))
	}
	d := dispatch.New(cfg.Dispatcher, logger, opts...)

	// 中断信号 → 中止所有在途请求，结果仍然输出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, aborting", zap.String("signal", sig.String()))
			d.Abort()
		case <-done:
		}
	}()

	descs := buildDescriptors(urls, *method, headers.header(), *data)
	envs, err := dispatch.DispatchAll[json.RawMessage](ctx, d, descs)
	if err != nil {
		logger.Error("dispatch failed", zap.Error(err))
		return 1
	}

	if err := writeEnvelopes(stdout, envs, *batch); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return 1
	}

	if reg != nil {
		if err := writeMetrics(stderr, reg); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	for _, env := range envs {
		if !env.OK() {
			return 1
		}
	}
	return 0
}

func buildDescriptors(urls []string, method string, header http.Header, data string) []dispatch.Descriptor {
	structured := method != "" || len(header) > 0 || data != ""
	descs := make([]dispatch.Descriptor, len(urls))
	for i, u := range urls {
		if !structured {
			descs[i] = dispatch.URL(u)
			continue
		}
		var body []byte
		if data != "" {
			body = []byte(data)
		}
		descs[i] = dispatch.Request(u, dispatch.Options{Method: method, Header: header, Body: body})
	}
	return descs
}

func writeEnvelopes(w io.Writer, envs []dispatch.Envelope[json.RawMessage], batch bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(envs) == 1 && !batch {
		return enc.Encode(envs[0])
	}
	return enc.Encode(envs)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
