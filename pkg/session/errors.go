package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the email and secret do not match a directory entry
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned by Resolve when the token is absent, unknown, expired or orphaned
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionNotFound is returned by stores when a session is missing or expired
	ErrSessionNotFound = errors.New("session not found")
)
