package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/api/middleware"
	"github.com/HarshArya1405/typescriptDemo/api/responses"
	"github.com/HarshArya1405/typescriptDemo/api/validators"
	"github.com/HarshArya1405/typescriptDemo/internal/identity"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	pkgauth "github.com/HarshArya1405/typescriptDemo/pkg/auth"
	"github.com/HarshArya1405/typescriptDemo/pkg/auth0"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

// TokenHeader carries the access token minted by checkUser.
const TokenHeader = "X-Valu-Token"

// CheckUser reconciles the caller's identity into a local user and returns
// the full profile with a freshly minted access token. The subject and email
// come from the verified identity-provider token; the body only supplies
// profile fields.
func CheckUser(svc identity.Service, verifier auth0.TokenVerifier, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "identity verification unavailable"))
			return
		}
		raw := middleware.BearerToken(r)
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		claims, err := verifier.Verify(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid identity token"))
			return
		}

		var body identity.ReconcileInput
		if err := validators.DecodeJSONPayload(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := bindVerifiedIdentity(&body, claims); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Reconcile(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := issueToken(jwtCfg, user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue access token"))
			return
		}
		w.Header().Set(TokenHeader, token)
		responses.WriteSuccess(w, user)
	}
}

// bindVerifiedIdentity overwrites the payload's sub and email with the token's.
// A payload naming a different subject or email is rejected.
func bindVerifiedIdentity(body *identity.ReconcileInput, claims *auth0.IdentityClaims) error {
	if sub := strings.TrimSpace(body.Sub); sub != "" && sub != claims.Subject {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "payload subject does not match token")
	}
	if email := strings.TrimSpace(body.Email); email != "" && claims.Email != "" && !strings.EqualFold(email, claims.Email) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "payload email does not match token")
	}
	body.Sub = claims.Subject
	body.Email = claims.Email
	return nil
}

func issueToken(cfg config.JWTConfig, user *users.UserDetailDTO) (string, error) {
	payload := pkgauth.AccessTokenPayload{UserID: user.ID}
	if user.Sub != nil {
		payload.Sub = *user.Sub
	}
	for _, role := range user.Roles {
		// custom roles stay in the database only
		if enums.RoleName(role.Name).IsValid() {
			payload.Roles = append(payload.Roles, role.Name)
		}
	}
	return pkgauth.MintAccessToken(cfg, time.Now(), payload)
}

func LinkUser(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body identity.LinkInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireOwnSubject(r.Context(), body.PrimaryUserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Link(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"linked": true})
	}
}

func UnlinkUser(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body identity.UnlinkInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireOwnSubject(r.Context(), body.PrimaryUserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Unlink(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"unlinked": true})
	}
}

func ListIdentities(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := identity.Filter{
			UserName: validators.QueryString(r, "userName"),
			Email:    validators.QueryString(r, "email"),
			Phone:    validators.QueryString(r, "phone"),
		}
		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetIdentity(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		found, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// UpdateIdentity applies mirrored profile changes. An email matching an
// existing user relinks the identity to that user.
func UpdateIdentity(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body identity.UpdateIdentityInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ListUserIdentities(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.URLParamUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
