package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

type traceCtxKey struct{}

const (
	// TraceIDKey 日志字段名，同时作为 gin.Context 中的 key
	TraceIDKey = "trace_id"
	// TraceHeader 请求与响应中透传 trace id 的头
	TraceHeader = "X-Trace-ID"
)

// ContextHandler 从 ctx 中提取 trace_id 附加到每条日志
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if traceID := TraceID(ctx); traceID != "" {
		r.AddAttrs(log.String(TraceIDKey, traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// NewTraceID 生成 trace id，后台任务用 source 作前缀便于检索
func NewTraceID(source string) string {
	if source == "" {
		return uuid.NewString()
	}
	return source + "-" + uuid.NewString()
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceCtxKey{}, traceID)
}

// TraceID 读取 ctx 中的 trace_id，不存在时返回空串
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(traceCtxKey{}).(string)
	return traceID
}
