package middleware

import (
	"context"
	"net/http"

	"github.com/cypheruni/learn/internal/database"
	"github.com/cypheruni/learn/internal/models"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserContextKey is the key for storing the signed-in user in context
const UserContextKey ContextKey = "user"

// SessionCookieName is the cookie carrying the session id
const SessionCookieName = "session"

// AuthMiddleware resolves the session cookie to a user and attaches it to
// the request context. It never rejects: identity is advisory here, and
// anonymous requests pass through untouched.
type AuthMiddleware struct {
	sessionStore *database.SessionStore
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessionStore *database.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{sessionStore: sessionStore}
}

// WithUser attaches the current user to the context when a valid session
// cookie is present
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.sessionStore.Get(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, continue anonymously
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the signed-in user, if any
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}

// SetSessionCookie writes the session cookie. secure should be true in
// production so the cookie only travels over HTTPS.
func SetSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
