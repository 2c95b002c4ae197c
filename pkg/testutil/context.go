package testutil

import (
	"net/http"

	"boxtribute/internal/auth"
)

// WithActor injects an authenticated actor into the request context,
// simulating what the auth middleware does after validating a token.
func WithActor(req *http.Request, actor *auth.Actor) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), actor))
}
