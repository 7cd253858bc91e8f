package service

import "errors"

var (
	PasswordIncorrect = errors.New("password incorrect")
	TokenIncorrect    = errors.New("token incorrect")
	ErrValidation     = errors.New("validation failed")
	ErrNotEligible    = errors.New("student not eligible for this template")
	ErrRoleAssigned   = errors.New("role already assigned")
)
