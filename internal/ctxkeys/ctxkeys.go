package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	batchIDKey      contextKey = "batch_id"
	requestIndexKey contextKey = "request_index"
)

// WithBatchID 设置 BatchID
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// BatchID 获取 BatchID
func BatchID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(batchIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithRequestIndex 设置请求在批次中的下标
func WithRequestIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, requestIndexKey, index)
}

// RequestIndex 获取请求在批次中的下标
func RequestIndex(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(requestIndexKey).(int)
	if !ok {
		return 0, false
	}
	return v, true
}
