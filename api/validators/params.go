package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParamUUID parses a UUID path parameter. Malformed ids fail validation
// before any service call.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// URLParamUint parses a numeric catalog id path parameter.
func URLParamUint(r *http.Request, name string) (uint, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return uint(value), nil
}
