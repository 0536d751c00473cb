package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates a registration against an existing account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountBlocked indicates the account is blocked by an administrator.
	ErrAccountBlocked = errors.New("account blocked")
)
