package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HarshArya1405/typescriptDemo/api/responses"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasRole(r.Context(), role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SelfOnly restricts a route to the user named by the URL parameter.
func SelfOnly(param string, logg *logger.Logger) func(http.Handler) http.Handler {
	return SelfOrRole(param, "", logg)
}

// SelfOrRole admits the user named by the URL parameter or any caller
// holding role. An empty role admits only the named user.
func SelfOrRole(param, role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := UserIDFromContext(r.Context())
			target := chi.URLParam(r, param)
			if caller != "" && caller == target {
				next.ServeHTTP(w, r)
				return
			}
			if role != "" && HasRole(r.Context(), role) {
				next.ServeHTTP(w, r)
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted for this user"))
		})
	}
}
