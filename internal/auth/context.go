package auth

import (
	"context"

	dErrors "boxtribute/pkg/domain-errors"
)

type actorKey struct{}

// WithActor injects the authenticated actor into the context. Set by the
// auth middleware and by test setups.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext retrieves the authenticated actor, or nil when the
// request was not authenticated.
func ActorFromContext(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// RequireActor retrieves the actor or fails with CodeUnauthorized. Handlers
// call this once at the top and pass the actor down explicitly.
func RequireActor(ctx context.Context) (*Actor, error) {
	if a := ActorFromContext(ctx); a != nil {
		return a, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated actor")
}
