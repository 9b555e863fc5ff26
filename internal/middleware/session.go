package middleware

import (
	"context"
	"net/http"
	"strings"

	"freshcart/internal/session"
)

// Context key for the guest session ID
type contextKey string

const SessionIDKey contextKey = "sessionID"

// SessionFromContext returns the verified guest session id, if any.
func SessionFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(SessionIDKey).(string)
	return sid, ok && sid != ""
}

// SessionMiddleware verifies an optional guest-session bearer token.
// Anonymous requests pass through untouched; a present-but-invalid token is
// rejected so a forged session can never reach a handler.
func SessionMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			sid, err := session.Parse(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
