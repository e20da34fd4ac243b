package ports

import (
	"context"
	"time"

	"github.com/layer-3/walletlink/core"
)

// ChallengeStore holds in-flight verification requests keyed by nonce.
// Entries self-expire after their TTL; no sweep job is needed.
type ChallengeStore interface {
	// Put inserts a request keyed by its nonce, failing if the nonce already
	// exists. The entry expires after ttl.
	Put(ctx context.Context, req *core.VerificationRequest, ttl time.Duration) error

	// Consume atomically reads and deletes the request for the nonce, so that
	// exactly one concurrent caller can obtain it. Returns core.ErrNonceInvalid
	// if the nonce is unknown or already consumed.
	Consume(ctx context.Context, nonce string) (*core.VerificationRequest, error)
}

// BindingStore is the durable 1:1 identity<->wallet registry
type BindingStore interface {
	// Bind records the binding, enforcing uniqueness in both directions
	// atomically. Returns core.ErrWalletAlreadyBound if either the wallet or
	// the identity is already part of another binding.
	Bind(ctx context.Context, binding *core.WalletBinding) error

	// Unbind removes the binding for the identity from both indices.
	// Removing an absent binding is not an error.
	Unbind(ctx context.Context, identity core.Identity) error

	// GetByIdentity returns the binding for an identity, or core.ErrBindingNotFound
	GetByIdentity(ctx context.Context, identity core.Identity) (*core.WalletBinding, error)

	// GetByWallet returns the binding holding a wallet address, or core.ErrBindingNotFound
	GetByWallet(ctx context.Context, walletAddress string) (*core.WalletBinding, error)
}
