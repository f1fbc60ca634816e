package middleware

import (
	"net/http"
	"strings"

	"github.com/groovebay/storefront-backend/api/responses"
	pkgauth "github.com/groovebay/storefront-backend/pkg/auth"
	"github.com/groovebay/storefront-backend/pkg/config"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the owner
// identity the token was issued for.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithOwnerID(r.Context(), claims.OwnerID())
			ctx = WithRole(ctx, claims.Role)
			if logg != nil {
				ctx = logg.WithOwnerID(ctx, claims.OwnerID())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
