package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type contextKey string

const sessionKey contextKey = "session"

// TokenParser turns a bearer token into the caller's session.
type TokenParser interface {
	Parse(token string) (entity.Session, error)
}

// Authenticate requires a valid bearer token and stores the session in the context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				unauthorized(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}
			session, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				unauthorized(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok || !session.IsAdmin() {
			unauthorized(w, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, s entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) (entity.Session, bool) {
	s, ok := ctx.Value(sessionKey).(entity.Session)
	return s, ok
}

func unauthorized(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "error": message})
}
