package context

import (
	stdcontext "context"
	"strings"
)

type (
	requestIDKey struct{}
	runIDKey     struct{}
)

// WithRequestID stores the inbound request id.
func WithRequestID(ctx stdcontext.Context, requestID string) stdcontext.Context {
	return stdcontext.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx stdcontext.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// WithRunID stores the id of the scheduler job run driving this context.
func WithRunID(ctx stdcontext.Context, runID string) stdcontext.Context {
	return stdcontext.WithValue(ctx, runIDKey{}, strings.TrimSpace(runID))
}

// RunIDFromContext returns the job run id or an empty string.
func RunIDFromContext(ctx stdcontext.Context) string {
	return stringValue(ctx, runIDKey{})
}

func stringValue(ctx stdcontext.Context, key any) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
