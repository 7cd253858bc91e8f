package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"certdesk/internal/domains"
	"certdesk/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	provider AuthProvider
	secret   string
}

type AuthProvider interface {
	SaveUser(ctx context.Context, passHash string, user domains.UserRegister) (domains.User, error)
	GetUserByEmail(ctx context.Context, email string) (domains.User, error)
	GetUserByID(ctx context.Context, userID int64) (domains.User, error)
	UpdateRole(ctx context.Context, email string, role domains.Role) (domains.User, error)
	UpdatePassword(ctx context.Context, email string, passHash string) error
}

func NewAuthService(provider AuthProvider, secret string) *AuthService {
	return &AuthService{
		provider: provider,
		secret:   secret,
	}
}

func (s *AuthService) Register(ctx context.Context, user domains.UserRegister) (domains.User, error) {
	if !strings.Contains(user.Email, "@") {
		return domains.User{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if user.Password == "" {
		return domains.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if user.Faculty != nil && !user.Faculty.Valid() {
		return domains.User{}, fmt.Errorf("%w: invalid faculty %q", ErrValidation, string(*user.Faculty))
	}
	if user.Specialization != nil && !user.Specialization.Valid() {
		return domains.User{}, fmt.Errorf("%w: invalid specialization %q", ErrValidation, string(*user.Specialization))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hash password failed", "err", err)
		return domains.User{}, err
	}

	saved, err := s.provider.SaveUser(ctx, string(passHash), user)
	if err != nil {
		if !errors.Is(err, storage.ErrUserExist) {
			slog.Error("save user failed", "err", err)
		}
		return domains.User{}, err
	}
	return saved, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (string, string, error) {
	user, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", PasswordIncorrect
		}
		slog.Error("fetch user failed", "err", err)
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", "", PasswordIncorrect
	}

	accessToken, refreshToken, err := s.GenerateTokens(user)
	if err != nil {
		slog.Error("generate tokens failed", "err", err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) GenerateTokens(user domains.User) (accessToken string, refreshToken string, err error) {
	accessExpiration := time.Now().Add(15 * time.Minute)
	refreshExpiration := time.Now().Add(7 * 24 * time.Hour)

	accessClaims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"exp":  accessExpiration.Unix(),
		"type": "access",
	}
	accessJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err = accessJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"exp":  refreshExpiration.Unix(),
		"type": "refresh",
	}
	refreshJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err = refreshJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sub, claims, err := s.validateAndGetSubByToken(refreshToken)
	if err != nil {
		return "", "", TokenIncorrect
	}
	if claims["type"] != "refresh" {
		return "", "", TokenIncorrect
	}

	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		return "", "", err
	}

	return s.GenerateTokens(user)
}

func (s *AuthService) Me(ctx context.Context, token string) (domains.User, error) {
	sub, _, err := s.validateAndGetSubByToken(token)
	if err != nil {
		return domains.User{}, TokenIncorrect
	}
	return s.provider.GetUserByID(ctx, sub)
}

// ChangeRole assigns a new role; assigning the role the user already holds is
// a conflict, not a no-op.
func (s *AuthService) ChangeRole(ctx context.Context, email string, role domains.Role) (domains.User, error) {
	if !role.Valid() {
		return domains.User{}, fmt.Errorf("%w: invalid role %q", ErrValidation, string(role))
	}

	user, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		return domains.User{}, err
	}
	if user.Role == role {
		return domains.User{}, ErrRoleAssigned
	}

	updated, err := s.provider.UpdateRole(ctx, email, role)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("update role failed", "err", err, "email", email)
		}
		return domains.User{}, err
	}
	return updated, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email string, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(newPassword)) == nil {
		return fmt.Errorf("%w: new password matches the old one", ErrValidation)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.provider.UpdatePassword(ctx, email, string(passHash))
}

func (s *AuthService) validateAndGetSubByToken(initToken string) (int64, jwt.MapClaims, error) {
	token, err := jwt.Parse(initToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, nil, errors.New("invalid claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, nil, errors.New("subject missing")
	}

	uid, err := strconv.ParseInt(subStr, 10, 64)
	if err != nil {
		return 0, nil, errors.New("subject malformed")
	}
	return uid, claims, nil
}
