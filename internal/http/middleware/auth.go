package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/pkg/auth"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireJWT rejects requests without a valid Bearer token and stores
// the parsed claims on the request context.
func RequireJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				response.Unauthorized(w, "invalid authorization token")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, strconv.FormatInt(claims.Sub, 10))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only authenticated users whose role is in the
// given set. It must run after RequireJWT.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				response.Unauthorized(w, "authentication required")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				response.Forbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
