package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BaSui01/fetchup/config"
	"github.com/BaSui01/fetchup/internal/ctxkeys"
)

const (
	tracerName = "github.com/BaSui01/fetchup/dispatch"
	// 响应体排空上限，超出部分直接关闭连接
	drainLimit = 64 << 10
)

// =============================================================================
// 📡 观察者
// =============================================================================

// Observer 接收请求生命周期事件。*metrics.Collector 实现了该接口。
type Observer interface {
	RecordRequest(method string, status int, rejected bool, duration time.Duration)
	RecordBatch(size int)
	RequestStarted()
	RequestSettled()
	RecordAbort()
	RecordDispatchError()
}

type nopObserver struct{}

func (nopObserver) RecordRequest(string, int, bool, time.Duration) {}
func (nopObserver) RecordBatch(int)                                {}
func (nopObserver) RequestStarted()                                {}
func (nopObserver) RequestSettled()                                {}
func (nopObserver) RecordAbort()                                   {}
func (nopObserver) RecordDispatchError()                           {}

// =============================================================================
// 🚀 分发器
// =============================================================================

// Dispatcher 并发发起 HTTP 请求，将每个结果封装为 Envelope，
// 并通过共享的取消信号支持一次性中止所有在途请求。
//
// 信号在第一次分发时惰性创建；中止后，下一次分发会换上新的信号，
// 因此 Abort 只影响调用前已经发出的请求。
type Dispatcher struct {
	cfg       config.DispatcherConfig
	transport Transport
	decoder   Decoder
	limiter   *rate.Limiter
	observer  Observer
	tracer    trace.Tracer
	logger    *zap.Logger

	mu     sync.Mutex
	signal *Signal
}

// Option 配置 Dispatcher
type Option func(*Dispatcher)

// WithTransport 替换默认的 HTTP 客户端
func WithTransport(t Transport) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.transport = t
		}
	}
}

// WithDecoder 替换默认的 JSON 解码器
func WithDecoder(dec Decoder) Option {
	return func(d *Dispatcher) {
		if dec != nil {
			d.decoder = dec
		}
	}
}

// WithObserver 设置生命周期观察者（通常是指标收集器）
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithTracerProvider 使用指定的 TracerProvider，默认使用全局 provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		if tp != nil {
			d.tracer = tp.Tracer(tracerName)
		}
	}
}

// New 创建分发器。logger 为 nil 时使用 zap.NewNop()。
func New(cfg config.DispatcherConfig, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		cfg:      cfg,
		decoder:  JSONDecoder{},
		observer: nopObserver{},
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
		logger:   logger.With(zap.String("component", "dispatcher")),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.transport == nil {
		d.transport = NewHTTPClient(config.DefaultTransportConfig())
	}
	return d
}

// acquire 返回当前有效信号；若不存在或已中止则创建新信号。
func (d *Dispatcher) acquire() *Signal {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.signal == nil || d.signal.Aborted() {
		d.signal = newSignal()
	}
	return d.signal
}

// Abort 中止当前信号下所有在途请求。尚未分发过或已中止时为空操作。
func (d *Dispatcher) Abort() {
	d.abort(ErrAborted)
}

// AbortWithReason 与 Abort 相同，但被中止的请求以 reason 作为失败原因。
func (d *Dispatcher) AbortWithReason(reason string) {
	if reason == "" {
		d.abort(ErrAborted)
		return
	}
	d.abort(fmt.Errorf("%w: %s", ErrAborted, reason))
}

func (d *Dispatcher) abort(cause error) {
	if d == nil {
		return
	}
	d.mu.Lock()
	sig := d.signal
	d.mu.Unlock()
	if sig == nil {
		return
	}
	if sig.Abort(cause) {
		d.observer.RecordAbort()
		d.logger.Info("dispatcher aborted", zap.Error(cause))
	}
}

// Aborted 报告当前信号是否已中止。下一次分发会重新创建信号。
func (d *Dispatcher) Aborted() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signal != nil && d.signal.Aborted()
}

// =============================================================================
// 📤 分发入口
// =============================================================================

// Dispatch 发起单个请求，返回单个 Envelope。
// 请求层面的失败记录在 Envelope 中；error 只在分发过程本身出错时返回。
func Dispatch[T any](ctx context.Context, d *Dispatcher, desc Descriptor) (Envelope[T], error) {
	out, err := dispatchAll[T](ctx, d, "dispatch", []Descriptor{desc})
	if err != nil {
		return Envelope[T]{}, err
	}
	return out[0], nil
}

// DispatchAll 并发发起 descs 中所有请求，等待全部落定后按输入顺序返回。
// 单个请求失败不会影响其他请求。
func DispatchAll[T any](ctx context.Context, d *Dispatcher, descs []Descriptor) ([]Envelope[T], error) {
	return dispatchAll[T](ctx, d, "dispatch_all", descs)
}

func dispatchAll[T any](ctx context.Context, d *Dispatcher, op string, descs []Descriptor) (out []Envelope[T], err error) {
	if d == nil {
		return nil, &DispatchError{Op: op, Err: ErrNilDispatcher}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", zap.String("op", op), zap.Any("panic", r))
			d.observer.RecordDispatchError()
			out = nil
			err = &DispatchError{Op: op, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	// 同一次分发中的所有请求共享同一信号快照
	sig := d.acquire()

	batchID := uuid.NewString()
	ctx = ctxkeys.WithBatchID(ctx, batchID)
	ctx, span := d.tracer.Start(ctx, "fetchup.dispatch", trace.WithAttributes(
		attribute.String("fetchup.batch_id", batchID),
		attribute.Int("fetchup.batch_size", len(descs)),
	))
	defer span.End()

	d.observer.RecordBatch(len(descs))
	d.logger.Debug("dispatching",
		zap.String("op", op),
		zap.String("batch_id", batchID),
		zap.Int("size", len(descs)),
	)

	results := make([]Envelope[T], len(descs))
	g, gctx := errgroup.WithContext(ctx)
	if d.cfg.MaxConcurrency > 0 {
		g.SetLimit(d.cfg.MaxConcurrency)
	}
	for i, desc := range descs {
		g.Go(func() error {
			results[i] = settle[T](gctx, d, sig, i, desc)
			return nil // 不让 errgroup 提前终止，每个请求自行落定
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("fetchup.rejected", failed))
	d.logger.Debug("batch settled",
		zap.String("batch_id", batchID),
		zap.Int("fulfilled", len(results)-failed),
		zap.Int("rejected", failed),
	)
	return results, nil
}

// =============================================================================
// 🔧 单请求执行
// =============================================================================

// settle 执行单个请求并保证返回一个终态 Envelope，包括 panic 的情况。
func settle[T any](ctx context.Context, d *Dispatcher, sig *Signal, index int, desc Descriptor) (env Envelope[T]) {
	ctx = ctxkeys.WithRequestIndex(ctx, index)
	ctx, span := d.tracer.Start(ctx, "fetchup.request", trace.WithAttributes(
		attribute.String("http.request.method", desc.Method()),
		attribute.String("url.full", desc.Address()),
		attribute.Int("fetchup.index", index),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			env = rejected[T](fmt.Sprintf("panic: %v", r))
		}
		d.settled(ctx, span, desc, env.StatusCode, env.Outcome(), env.Reason, time.Since(start))
	}()
	d.observer.RequestStarted()

	rctx, release := sig.bind(ctx)
	defer release()

	// 绑定到已中止信号（例如被 MaxConcurrency 排队）的请求不再发出
	if rctx.Err() != nil {
		return rejected[T](d.failureReason(rctx, rctx.Err()))
	}

	status, payload, err := fetch[T](rctx, d, desc)
	if err != nil {
		return rejected[T](d.failureReason(rctx, err))
	}
	return fulfilled(status, payload)
}

// settled 执行落定后的观察者回调与日志；其中的 panic 只记录，不影响 Envelope。
func (d *Dispatcher) settled(ctx context.Context, span trace.Span, desc Descriptor, status int, outcome, reason string, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("observer panicked", zap.String("address", desc.Address()), zap.Any("panic", r))
		}
	}()
	d.observer.RequestSettled()
	d.observer.RecordRequest(desc.Method(), status, outcome == OutcomeRejected, elapsed)
	d.finish(ctx, span, desc, outcome, reason, elapsed)
}

func fetch[T any](ctx context.Context, d *Dispatcher, desc Descriptor) (int, T, error) {
	var zero T

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return 0, zero, err
		}
	}

	req, err := desc.build(ctx, d.cfg.UserAgent)
	if err != nil {
		return 0, zero, err
	}

	resp, err := d.transport.Do(req)
	if err != nil {
		return 0, zero, err
	}
	if resp == nil {
		return 0, zero, errNilResponse
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		_ = resp.Body.Close()
	}()

	var body io.Reader = resp.Body
	var limited *maxBytesReader
	if d.cfg.MaxBodyBytes > 0 {
		limited = &maxBytesReader{r: resp.Body, remaining: d.cfg.MaxBodyBytes, limit: d.cfg.MaxBodyBytes}
		body = limited
	}

	var payload T
	err = d.decoder.Decode(body, &payload)
	if limited != nil && limited.exceeded {
		return 0, zero, limited.err()
	}
	if err != nil {
		return 0, zero, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

// maxBytesReader 读取至多 limit 字节，超出时返回 ErrBodyTooLarge 并记录 exceeded。
type maxBytesReader struct {
	r         io.Reader
	remaining int64
	limit     int64
	exceeded  bool
}

func (m *maxBytesReader) Read(p []byte) (int, error) {
	if m.exceeded {
		return 0, m.err()
	}
	// 多读一个字节用于判断是否超限
	if int64(len(p)) > m.remaining+1 {
		p = p[:m.remaining+1]
	}
	n, err := m.r.Read(p)
	if int64(n) <= m.remaining {
		m.remaining -= int64(n)
		return n, err
	}
	n = int(m.remaining)
	m.remaining = 0
	m.exceeded = true
	return n, m.err()
}

func (m *maxBytesReader) err() error {
	return fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, m.limit)
}

// failureReason 优先使用取消原因（中止或调用方取消），其次是错误本身。
func (d *Dispatcher) failureReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		if cause := context.Cause(ctx); cause != nil {
			return cause.Error()
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	if d.cfg.FailureReason != "" {
		return d.cfg.FailureReason
	}
	return config.DefaultFailureReason
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, desc Descriptor, outcome, reason string, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("method", desc.Method()),
		zap.String("address", desc.Address()),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	}
	if id, ok := ctxkeys.BatchID(ctx); ok {
		fields = append(fields, zap.String("batch_id", id))
	}
	if idx, ok := ctxkeys.RequestIndex(ctx); ok {
		fields = append(fields, zap.Int("index", idx))
	}

	span.SetAttributes(attribute.String("fetchup.outcome", outcome))
	if outcome == OutcomeRejected {
		span.SetStatus(codes.Error, reason)
		d.logger.Debug("request rejected", append(fields, zap.String("reason", reason))...)
		return
	}
	d.logger.Debug("request fulfilled", fields...)
}
