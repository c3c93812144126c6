package goSession

import (
	"context"
	"time"
)

type requestStartContextKey struct{}

func withRequestStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestStartContextKey{}, t)
}

func requestStartFromContext(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	t, ok := ctx.Value(requestStartContextKey{}).(time.Time)
	return t, ok
}
