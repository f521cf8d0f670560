package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/xavierca1/leaddesk/internal/infra/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// TokenValidator é o que o middleware precisa do JWTManager.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTAuth exige "Authorization: Bearer <token>" válido.
func JWTAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := v.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole deve vir depois do JWTAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || !claims.HasRole(role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// Actor é o e-mail do operador autenticado, usado como ator dos eventos.
func Actor(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Email
	}
	return ""
}
