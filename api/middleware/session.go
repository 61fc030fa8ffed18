package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prasetyowira/qrstudio/constant"
)

type sessionKey struct{}

// Session assigns every browser a session id kept in a cookie.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(constant.SessionCookieName); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     constant.SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
				MaxAge:   365 * 24 * 60 * 60,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
	})
}

// WithSessionID stores a session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the session id stored in ctx, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
