// Package auth gates protected routes behind the session cookie and makes
// the resolved account available on the request context.
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rmateus/taskman-be/internal/models"
)

// CookieName is the transport slot for the session token. The token is
// accepted from this HTTP-only cookie only — never from a header, the
// request body or the query string.
const CookieName = "auth_token"

type contextKey string

const accountKey = contextKey("account")

// TokenResolver resolves an opaque session token to its account.
type TokenResolver interface {
	Resolve(token string) (models.User, error)
}

// Middleware rejects requests without a valid session cookie before they
// reach any handler and attaches the account to the request context.
func Middleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "authentication required")
				return
			}

			user, err := resolver.Resolve(cookie.Value)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext returns the account the gate attached to the request.
func AccountFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(accountKey).(models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
