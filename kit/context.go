package kit

import "context"

type contextKey string

const (
	transportKey contextKey = "kit_transport"
	requestIDKey contextKey = "kit_request_id"
	traceIDKey   contextKey = "kit_trace_id"
)

// Transport names the surface a call arrived on.
type Transport string

const (
	TransportLocal     Transport = "local" // in-process Go call
	TransportHTTP      Transport = "http"
	TransportMCP       Transport = "mcp"
	TransportWebSocket Transport = "websocket"
)

func WithTransport(ctx context.Context, t Transport) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport defaults to TransportLocal.
func GetTransport(ctx context.Context) Transport {
	if v, ok := ctx.Value(transportKey).(Transport); ok {
		return v
	}
	return TransportLocal
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}
func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// LogAttrs returns the slog key/value pairs for the call metadata in ctx.
// Empty ids are left out.
func LogAttrs(ctx context.Context) []any {
	attrs := []any{"transport", string(GetTransport(ctx))}
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := GetTraceID(ctx); id != "" {
		attrs = append(attrs, "trace_id", id)
	}
	return attrs
}
