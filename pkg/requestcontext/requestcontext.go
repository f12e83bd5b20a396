// Package requestcontext provides typed accessors for values carried on the
// request context: the authenticated caller, request ID, and client metadata.
// Middleware writes these once per request; handlers and services only read.
package requestcontext

import "context"

type (
	requestIDKey struct{}
	subjectKey   struct{}
	adminKey     struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
)

// WithRequestID attaches the request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSubject attaches the authenticated caller's subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// Subject returns the authenticated caller's subject, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(subjectKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAdmin marks the caller as an administrator.
func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey{}, admin)
}

// Admin reports whether the caller holds administrator privilege.
func Admin(ctx context.Context) bool {
	if v, ok := ctx.Value(adminKey{}).(bool); ok {
		return v
	}
	return false
}

// WithClientMetadata attaches the resolved client IP and User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP returns the resolved client IP, or "" when absent.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent returns the raw User-Agent header, or "" when absent.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}
