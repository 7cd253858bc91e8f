package httptransport

import (
	"errors"
	"net/http"

	"certdesk/internal/docgen"
	"certdesk/internal/httpx"
	"certdesk/internal/service"
	"certdesk/internal/storage"
)

// writeServiceError maps error kinds onto distinct transport statuses so the
// caller can tell validation, missing resources, conflicts and failed
// generations apart.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotEligible):
		httpx.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrUserExist),
		errors.Is(err, service.ErrRoleAssigned):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, docgen.ErrRender):
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.PasswordIncorrect),
		errors.Is(err, service.TokenIncorrect):
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
