package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// CallerKey 是用于在上下文中存储 auth.Caller 的键。
const CallerKey contextKey = "caller"

// AuthMiddleware resolves the caller from the session cookie, falling back
// to an "Authorization: Bearer" header, and stores it in the request context.
// Requests without a valid credential get 401.
func AuthMiddleware(gate auth.SessionGate, cookieName string, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := CredentialFromRequest(r, cookieName)
			caller, err := gate.ResolveCaller(r.Context(), credential)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized - invalid or missing token")
					return
				}
				log.WithError(err).Error("session gate failed")
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// CredentialFromRequest returns the raw token from the cookie or the
// Authorization header, or "" when neither is present.
func CredentialFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	headerParts := strings.SplitN(authHeader, " ", 2)
	if len(headerParts) == 2 && strings.EqualFold(headerParts[0], "bearer") {
		return strings.TrimSpace(headerParts[1])
	}
	return ""
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller auth.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromContext 从上下文中获取调用者。
func CallerFromContext(ctx context.Context) (auth.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(auth.Caller)
	return caller, ok && caller.UserID != 0
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
