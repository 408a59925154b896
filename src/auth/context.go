package auth

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"signaltracker/src/security"
)

type contextKey string

const AdminKey contextKey = "admin"

const tokenHeader = "X-Admin-Token"

func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(AdminKey).(bool)
	return ok
}

// WithAdmin marks ctx as authenticated with the admin token.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, AdminKey, true)
}

// RequireAdmin lets a request through only when it carries the admin token,
// either as X-Admin-Token or as a bearer token.
func RequireAdmin(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(tokenHeader)
			if token == "" {
				token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if err := security.CheckToken(hash, token); err != nil {
				logger.WithError(err).WithField("path", r.URL.Path).Warn("admin token rejected")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context())))
		})
	}
}
