package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie login sets for browser clients.
const CookieName = "token"

// contextKey is unexported so no other package can read or shadow the
// values stored here.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth rejects requests without a valid session token with 401 and
// stores the token's user ID in the request context otherwise.
//
// The token is read from "Authorization: Bearer <token>" first, then from
// the cookie. Revoked and expired tokens are rejected like any other.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns ("", false) if the request was not authenticated.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// TokenFromRequest extracts the raw session token, or "" if none was sent.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
}
