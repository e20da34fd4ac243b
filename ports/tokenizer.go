package ports

import "github.com/layer-3/walletlink/core"

// SessionIssuer mints and validates stateless session tokens
type SessionIssuer interface {
	// Issue signs a token carrying the claims
	Issue(claims *core.SessionClaims) (string, error)

	// Validate checks signature and expiry and returns the claims.
	// Returns core.ErrSessionExpired or core.ErrSessionInvalid on failure.
	Validate(token string) (*core.SessionClaims, error)
}

// SignatureVerifier recovers the signing address from a message signature
type SignatureVerifier interface {
	// Recover returns the checksummed address that produced signature over
	// message. Malformed input surfaces as core.ErrSignatureMismatch.
	Recover(message string, signature string) (string, error)
}
