package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrUserNotFound = errors.New("user not found")
	ErrNoCredential = errors.New("no refresh token found")

	// ErrConsentRequired is returned when a first login completes without a
	// refresh token; the user must re-consent so one is issued.
	ErrConsentRequired = errors.New("refresh token required, please re-consent")
)
