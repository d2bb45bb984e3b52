package middleware

import (
	"net/http"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/api/responses"
	pkgAuth "github.com/HarshArya1405/typescriptDemo/pkg/auth"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRoles(ctx, claims.Roles)
			ctx = WithSub(ctx, claims.Sub)

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				if claims.Sub != "" {
					ctx = logg.WithSubject(ctx, claims.Sub)
				}
				ctx = logg.WithField(ctx, "roles", strings.Join(claims.Roles, ","))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the Authorization header value without its Bearer
// scheme, or "" when absent.
func BearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
