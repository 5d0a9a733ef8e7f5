package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/mf-tracker-be/internal/auth"
	"github.com/hongminglow/mf-tracker-be/internal/http/respond"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type identityKey struct{}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity on the request context.
func RequireAuth(tokens TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			respond.Error(w, http.StatusUnauthorized, "Missing auth header")
			return
		}
		token := header
		if rest, ok := strings.CutPrefix(header, "Bearer"); ok {
			token = strings.TrimSpace(rest)
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				respond.Error(w, http.StatusUnauthorized, "Missing auth header")
				return
			}
			respond.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, identity)))
	})
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}
