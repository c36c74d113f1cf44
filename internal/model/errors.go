package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenMissing         = errors.New("token missing")
	ErrTokenMalformed       = errors.New("token malformed")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenSubjectMismatch = errors.New("token subject mismatch")

	// Company related errors
	ErrCompanyNotFound  = errors.New("company not found")
	ErrNotCompanyMember = errors.New("user is not a member of the company")
	ErrCompanyMismatch  = errors.New("resource not in active company")
	ErrNoCompanyBinding = errors.New("token carries no company binding")
	ErrNoCompanies      = errors.New("user does not belong to any company")

	// Resource related errors
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrCategoryNotFound    = errors.New("item category not found")
	ErrCountryNotFound     = errors.New("country not found")
	ErrEmailConfigNotFound = errors.New("email settings not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
