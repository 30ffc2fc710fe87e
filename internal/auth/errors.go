package auth

import "errors"

var (
	// ErrInvalidCredentials means the identity provider rejected a sign-in.
	// It is surfaced to the caller as a re-authentication prompt and never
	// retried automatically.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired means a token refresh failed; the session has
	// already transitioned back to anonymous when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession means there are no stored tokens to restore from.
	ErrNoSession = errors.New("no stored session")
)
