package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/permission"
)

const principalKey contextKey = "principal"

// TokenParser resolves a raw bearer token to a principal.
type TokenParser interface {
	ParseToken(token string) (permission.Principal, error)
}

// Authenticate is middleware that resolves the Authorization bearer token to
// a principal. Requests without a token proceed as anonymous so that open
// endpoints keep working; a token that is present but invalid returns 401.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			p := permission.Anonymous()

			if raw := extractBearer(r); raw != "" {
				parsed, err := parser.ParseToken(raw)
				if err != nil {
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", requestID)
					return
				}
				p = parsed
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous principals with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())

		if p := GetPrincipal(r.Context()); !p.Authenticated {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetPrincipal retrieves the request principal from the context, which is
// the anonymous principal when unset.
func GetPrincipal(ctx context.Context) permission.Principal {
	if p, ok := ctx.Value(principalKey).(permission.Principal); ok {
		return p
	}
	return permission.Anonymous()
}

// WithPrincipal returns a context carrying the given principal. Used by the
// middleware and by handler tests.
func WithPrincipal(ctx context.Context, p permission.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
