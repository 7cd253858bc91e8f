package httptransport

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"certdesk/internal/docgen"
	"certdesk/internal/service"
	"certdesk/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad field", service.ErrValidation), http.StatusBadRequest},
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"not eligible", service.ErrNotEligible, http.StatusForbidden},
		{"conflict", storage.ErrConflict, http.StatusConflict},
		{"user exists", storage.ErrUserExist, http.StatusConflict},
		{"role assigned", service.ErrRoleAssigned, http.StatusConflict},
		{"render failed", fmt.Errorf("%w: no value for placeholder", docgen.ErrRender), http.StatusUnprocessableEntity},
		{"password incorrect", service.PasswordIncorrect, http.StatusUnauthorized},
		{"token incorrect", service.TokenIncorrect, http.StatusUnauthorized},
		{"anything else", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("pq: connection refused on 10.0.0.3"))

	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Contains(t, rec.Body.String(), "internal error")
}
