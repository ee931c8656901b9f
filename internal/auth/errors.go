package auth

import "errors"

// Failure kinds threaded from the flows to the transport boundary,
// where a single translation step maps them onto HTTP statuses.
var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidType           = errors.New("invalid account type")
	ErrNotFound              = errors.New("user not found")
	ErrNotVerified           = errors.New("email not verified")
	ErrAlreadyVerified       = errors.New("user already verified")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrSamePassword          = errors.New("new password must differ from current password")
	ErrEmailDispatch         = errors.New("email dispatch failed")
	ErrForbidden             = errors.New("not authorized for this resource")
	ErrProfileNotFound       = errors.New("profile not found")
)
