package api

import "context"

type ctxKey struct{}

// WithCorrelationID returns a copy of ctx carrying id. LoadingInterceptor
// always mints its own id; a caller's id is only logged as trace_id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CorrelationID returns the correlation id stored on ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
