package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/httputil"
)

// Auth validates the bearer token when one is present and attaches the
// user to the request context. Requests without a token continue
// anonymously; public-project reads are allowed for them. A token that
// fails verification is rejected outright.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("rejected token", "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, httputil.WithUser(r, claims.Subject, claims.DisplayName()))
		})
	}
}

// RequireAuth rejects anonymous requests. Wrap it inside Auth.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetUserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken pulls the token from the Authorization header, falling
// back to the token query parameter used by websocket clients, which
// cannot set headers from the browser.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
