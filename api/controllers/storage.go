package controllers

import (
	"context"
	"net/http"

	"github.com/HarshArya1405/typescriptDemo/api/responses"
	"github.com/HarshArya1405/typescriptDemo/api/validators"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/storage/s3"
)

type uploadSigner interface {
	SignedUploadURL(ctx context.Context, fileType string) (s3.UploadURL, error)
}

type uploadURLRequest struct {
	FileType string `json:"fileType" validate:"required,max=100"`
}

// UploadSignedURL presigns a PUT for a new object and returns its key.
func UploadSignedURL(signer uploadSigner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if signer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "storage unavailable"))
			return
		}
		var body uploadURLRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		signed, err := signer.SignedUploadURL(r.Context(), body.FileType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url"))
			return
		}
		responses.WriteSuccess(w, signed)
	}
}
