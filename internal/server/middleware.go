package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/Hayor63/ApplyLy/internal/auth"
)

type ctxKey string

const identityContextKey ctxKey = "identity"

// requireAuth authenticates the request from its bearer token. The
// token is stateless; no store lookup happens here.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := s.Tokens.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireType(t auth.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := identityFromContext(r.Context())
			if claims == nil {
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if claims.Type != t {
				writeFailure(w, http.StatusForbidden, "This action requires a "+string(t)+" account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromContext(ctx context.Context) *auth.AccessClaims {
	if val, ok := ctx.Value(identityContextKey).(*auth.AccessClaims); ok {
		return val
	}
	return nil
}
