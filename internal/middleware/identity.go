package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"qwksearch/internal/auth"
	"qwksearch/internal/httputil"
)

// Identity resolves the caller from an optional bearer token. Requests
// without a token continue as guests. A token that fails verification marks
// the request so handlers that need a user can answer 401; it never blocks
// the request here. A nil verifier treats every caller as a guest.
func Identity(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, httputil.WithAuthFailed(r))
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.Subject))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
