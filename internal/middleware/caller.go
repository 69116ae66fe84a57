package middleware

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type callerKey struct{}

// CallerHeader carries the already-authenticated caller identity.
// Authentication itself happens upstream of this service.
const CallerHeader = "X-User-ID"

// Caller is a middleware that propagates the caller identity from the
// request headers into the context.
func Caller(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if id := ctx.Header(CallerHeader); id != "" {
			newCtx := ContextWithCaller(ctx.Context(), id)
			ctx = huma.WithContext(ctx, newCtx)
		}

		next(ctx)
	}
}

// ContextWithCaller adds the caller identity to the context.
func ContextWithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerKey{}, callerID)
}

// CallerFromContext extracts the caller identity from the context.
func CallerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)

	return id, ok && id != ""
}
