package httptransport

import "certdesk/internal/domains"

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenRefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RoleChangeRequest struct {
	Email string       `json:"email"`
	Role  domains.Role `json:"role"`
}

type PasswordResetRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StatusChangeRequest struct {
	Status domains.ResponseStatus `json:"status"`
}

type DocumentHTMLResponse struct {
	HTML string `json:"html"`
}
