package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"boxtribute/internal/auth"
	"boxtribute/internal/transport/http/shared"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/requestcontext"
)

// RequireAuth validates the bearer token and stores the resulting actor on
// the request context. Requests without a valid token get a 401.
func RequireAuth(validator *auth.TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token rejected",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}
