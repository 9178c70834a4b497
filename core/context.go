package core

import "context"

// Context keys for execution options
type contextKey string

const suppressWarningsKey contextKey = "suppressWarnings"

// WithSuppressWarnings marks ctx so user-facing warnings are not printed.
// The MCP server uses it because its callers read structured results instead.
func WithSuppressWarnings(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressWarningsKey, true)
}

// shouldSuppressWarnings returns whether warnings should be suppressed from context
func shouldSuppressWarnings(ctx context.Context) bool {
	val := ctx.Value(suppressWarningsKey)
	if val == nil {
		return false // default: show warnings
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// warn prints a user-facing warning unless ctx suppresses them.
func warn(ctx context.Context, msg string, err error) {
	if shouldSuppressWarnings(ctx) {
		return
	}
	logWarn(msg, err)
}
