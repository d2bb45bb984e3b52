package controllers

import (
	"net/http"

	"github.com/HarshArya1405/typescriptDemo/api/responses"
	"github.com/HarshArya1405/typescriptDemo/api/validators"
	"github.com/HarshArya1405/typescriptDemo/internal/followers"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

// ToggleFollow follows the creator, or unfollows when already following.
func ToggleFollow(svc followers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body followers.ToggleInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireActingFor(r.Context(), body.LearnerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Toggle(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListFollowedCreators(svc followers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID, err := validators.URLParamUUID(r, "learnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListFollowedCreators(r.Context(), learnerID, validators.QueryString(r, "fullName"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ListCreatorLearners(svc followers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID, err := validators.URLParamUUID(r, "creatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListLearners(r.Context(), creatorID, validators.QueryString(r, "fullName"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
