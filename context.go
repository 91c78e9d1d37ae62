package marketauth

import "context"

type originContextKey struct{}
type userAgentContextKey struct{}

// WithOrigin attaches the caller's network origin (typically the client IP)
// to ctx. The Engine uses it to key lockout counters and to stamp audit
// entries.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originContextKey{}, origin)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. Used only to
// enrich audit entries.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func originFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	origin, _ := ctx.Value(originContextKey{}).(string)
	return origin
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
