package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimitExceeded is returned when an identity has started too many
	// challenges inside the current window
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrWalletAlreadyBound is returned when the wallet or the identity is
	// already part of another binding
	ErrWalletAlreadyBound = errors.New("wallet already bound")

	// ErrNonceInvalid is returned when a nonce is unknown, expired or consumed
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrSignatureMismatch is returned when the recovered signer does not
	// match the claimed wallet, or the signature is malformed
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrStoreUnavailable is returned when a backing store operation fails
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBindingNotFound is returned when no binding exists for a lookup
	ErrBindingNotFound = errors.New("binding not found")

	// ErrSessionExpired is returned when a session token has expired
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalid is returned when a session token is invalid
	ErrSessionInvalid = errors.New("invalid session token")
)

// RateLimitError carries the time until the current window resets.
// It matches errors.Is(err, ErrRateLimitExceeded).
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}
