package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"gallery/internal/auth"
	"gallery/internal/httputil"
)

// PublicRoute reports whether a request may skip authentication.
type PublicRoute func(r *http.Request) bool

// DefaultPublicRoutes lets health checks, sign-in and media through.
func DefaultPublicRoutes(mediaPrefix string) PublicRoute {
	mediaPrefix = strings.TrimSuffix(mediaPrefix, "/") + "/"
	return func(r *http.Request) bool {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/health":
			return true
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			return true
		case r.Method == http.MethodOptions:
			return true
		case mediaPrefix != "/" && strings.HasPrefix(r.URL.Path, mediaPrefix):
			return true
		}
		return false
	}
}

// AuthMiddleware validates the bearer token and stores the identity in the
// request context. Public routes pass through untouched.
func AuthMiddleware(verifier auth.JWTVerifier, public PublicRoute, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil && public(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "authorization header must be Bearer {token}")
				return
			}

			identity, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected",
					"path", r.URL.Path,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithIdentity(r, identity))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
