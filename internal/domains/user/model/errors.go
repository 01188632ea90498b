package model

import "errors"

// =====================================================
// USER ERRORS
// =====================================================
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Error codes for API responses
const (
	ErrCodeInvalidCredentials = "USR001"
	ErrCodeUserNotFound       = "USR002"
	ErrCodeUsernameTaken      = "USR003"
	ErrCodeUserInactive       = "USR004"
	ErrCodeInvalidToken       = "USR005"
)
