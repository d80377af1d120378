// Package common defines shared constants and sentinel errors used across
// client and server layers of genzes. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserNotFound       = errors.New("user not found")

	// Remote backend errors. Both trigger the local fallback.
	ErrRemoteUnavailable = errors.New("remote backend unavailable")
	ErrRemoteCallFailed  = errors.New("remote call failed")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
