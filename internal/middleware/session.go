package middleware

import (
	"context"
	"net/http"

	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/transport"
)

type sessionUserKey struct{}

// SessionAuth resolves the session cookie to a store.User and requires it.
// Routes without an owner simply don't mount this middleware.
func SessionAuth(manager *auth.Manager, users store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "authentication not configured", nil)
				return
			}

			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}

			claims, err := manager.Parse(cookie.Value)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionUserKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession resolves the session cookie when present but lets the
// request through anonymously otherwise. Public routes use it so owners
// see their own drafts.
func OptionalSession(manager *auth.Manager, users store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := manager.Parse(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionUserKey{}, user)))
		})
	}
}

func SessionUser(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(sessionUserKey{}).(store.User)
	return u, ok
}

// WithSessionUser is a test hook for handler tests that bypass the cookie flow.
func WithSessionUser(ctx context.Context, user store.User) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, user)
}
