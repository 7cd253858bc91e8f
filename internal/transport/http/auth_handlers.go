package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"certdesk/internal/domains"
	"certdesk/internal/httpx"
)

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Register(ctx context.Context, user domains.UserRegister) (domains.User, error)
	Login(ctx context.Context, email string, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Me(ctx context.Context, token string) (domains.User, error)
	ChangeRole(ctx context.Context, email string, role domains.Role) (domains.User, error)
	ResetPassword(ctx context.Context, email string, newPassword string) error
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{service: service}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[domains.UserRegister](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[LoginData](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[TokenRefreshRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.Me(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[RoleChangeRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ChangeRole(r.Context(), payload.Email, payload.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[PasswordResetRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Email, payload.Password); err != nil {
		slog.Error("reset password failed", "err", err, "email", payload.Email)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
