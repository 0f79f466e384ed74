package middleware

import (
	"net/http"
	"strings"

	"github.com/avstore/avpos-backend/api/responses"
	pkgAuth "github.com/avstore/avpos-backend/pkg/auth"
	"github.com/avstore/avpos-backend/pkg/config"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// terminal role and salesman identifier.
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

			claims, err := pkgAuth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithRole(r.Context(), string(claims.Role))
			if claims.SalesmanID != "" {
				ctx = WithSalesmanID(ctx, claims.SalesmanID)
			}

			if logg != nil {
				ctx = logg.WithActorRole(ctx, string(claims.Role))
				if claims.SalesmanID != "" {
					ctx = logg.WithSalesmanID(ctx, claims.SalesmanID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
