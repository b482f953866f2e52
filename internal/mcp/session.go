package mcp

import "context"

type sessionKey struct{}

// WithSession attaches a per-request session identifier to the context.
// The session carries no other state; it exists so concurrent tool
// calls can be told apart in logs.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the session identifier stored in the context, or
// the empty string if none was attached.
func SessionFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}
