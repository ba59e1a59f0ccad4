// Package auth carries the current actor through a request context. The
// ownership-aware resolver reads it to scope upload lookups.
package auth

import "context"

type ctxKey string

const actorKey ctxKey = "actor"

// WithActor returns a child context identifying actor as the current user.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Actor returns the current actor, or nil for anonymous requests.
func Actor(ctx context.Context) *string {
	v, ok := ctx.Value(actorKey).(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}
