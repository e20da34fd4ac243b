package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const (
	// DefaultChallengeTTL is how long a challenge stays signable
	DefaultChallengeTTL = 10 * time.Minute

	// DefaultSessionTTL is the lifetime of an issued session token
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// Challenge is the result of starting a verification
type Challenge struct {
	Nonce     string
	Message   string
	ExpiresAt time.Time
}

// VerificationService orchestrates the wallet-ownership verification flow
type VerificationService struct {
	challenges ports.ChallengeStore
	bindings   ports.BindingStore
	limiter    ports.RateLimiter
	verifier   ports.SignatureVerifier
	issuer     ports.SessionIssuer
	eventPub   ports.EventPublisher
	messages   *MessageBuilder

	challengeTTL time.Duration
	sessionTTL   time.Duration
	now          func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	challenges ports.ChallengeStore,
	bindings ports.BindingStore,
	limiter ports.RateLimiter,
	verifier ports.SignatureVerifier,
	issuer ports.SessionIssuer,
	eventPub ports.EventPublisher,
	messages *MessageBuilder,
) *VerificationService {
	return &VerificationService{
		challenges:   challenges,
		bindings:     bindings,
		limiter:      limiter,
		verifier:     verifier,
		issuer:       issuer,
		eventPub:     eventPub,
		messages:     messages,
		challengeTTL: DefaultChallengeTTL,
		sessionTTL:   DefaultSessionTTL,
		now:          time.Now,
	}
}

// GenerateChallenge starts a verification for the identity claiming the
// wallet. It rate limits the identity, rejects wallets already bound to a
// different identity, stores the request under a fresh nonce and returns the
// message the wallet must sign.
//
// The wallet check here is advisory; Bind re-checks it atomically at
// verification time.
func (s *VerificationService) GenerateChallenge(ctx context.Context, identityID string, platform core.Platform, walletAddress string) (*Challenge, error) {
	identity := core.Identity{ID: identityID, Platform: platform}

	limit, err := s.limiter.Allow(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !limit.Allowed {
		return nil, &core.RateLimitError{RetryAfter: limit.RetryAfter}
	}

	existing, err := s.bindings.GetByWallet(ctx, walletAddress)
	if err != nil && err != core.ErrBindingNotFound {
		return nil, fmt.Errorf("wallet lookup: %w", err)
	}
	if existing != nil && existing.Identity() != identity {
		return nil, core.ErrWalletAlreadyBound
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	req := &core.VerificationRequest{
		IdentityID:    identityID,
		Platform:      platform,
		WalletAddress: walletAddress,
		Nonce:         nonce,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.challengeTTL),
	}

	if err := s.challenges.Put(ctx, req, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("challenge store: %w", err)
	}

	return &Challenge{
		Nonce:     nonce,
		Message:   s.messages.Render(walletAddress, nonce, req.IssuedAt),
		ExpiresAt: req.ExpiresAt,
	}, nil
}

// VerifyChallenge consumes the nonce, checks the signature against the
// claimed wallet, binds the wallet to the identity and issues a session
// token. The consume is single-use: a second call with the same nonce fails
// regardless of the first call's outcome.
func (s *VerificationService) VerifyChallenge(ctx context.Context, nonce, signature string) (string, error) {
	req, err := s.challenges.Consume(ctx, nonce)
	if err != nil {
		if err == core.ErrNonceInvalid {
			return "", err
		}
		return "", fmt.Errorf("challenge consume: %w", err)
	}

	now := s.now()
	if req.Expired(now) {
		return "", core.ErrNonceInvalid
	}

	// Re-render with the stored issuance timestamp; regenerating it would
	// change the signed bytes and fail legitimate signatures
	message := s.messages.Render(req.WalletAddress, req.Nonce, req.IssuedAt)

	recovered, err := s.verifier.Recover(message, signature)
	if err != nil {
		return "", core.ErrSignatureMismatch
	}
	if !strings.EqualFold(recovered, req.WalletAddress) {
		return "", core.ErrSignatureMismatch
	}

	binding := &core.WalletBinding{
		IdentityID:    req.IdentityID,
		Platform:      req.Platform,
		WalletAddress: req.WalletAddress,
		BoundAt:       now,
	}
	if err := s.bindings.Bind(ctx, binding); err != nil {
		if err == core.ErrWalletAlreadyBound {
			return "", err
		}
		return "", fmt.Errorf("binding insert: %w", err)
	}

	token, err := s.issuer.Issue(&core.SessionClaims{
		IdentityID:    req.IdentityID,
		Platform:      req.Platform,
		WalletAddress: req.WalletAddress,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishBound(ctx, binding); err != nil {
			// The binding is already durable; delivery is best effort
			log.Printf("walletlink: failed to publish bound event: %v", err)
		}
	}

	return token, nil
}

// UnlinkWallet removes the binding for the identity. Removing an absent
// binding is a no-op. Already-issued session tokens stay valid until expiry;
// callers needing hard revocation must re-check GetBinding per action.
func (s *VerificationService) UnlinkWallet(ctx context.Context, identityID string, platform core.Platform) error {
	identity := core.Identity{ID: identityID, Platform: platform}

	binding, err := s.bindings.GetByIdentity(ctx, identity)
	if err == core.ErrBindingNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("binding lookup: %w", err)
	}

	if err := s.bindings.Unbind(ctx, identity); err != nil {
		return fmt.Errorf("binding delete: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishUnbound(ctx, identity, binding.WalletAddress); err != nil {
			log.Printf("walletlink: failed to publish unbound event: %v", err)
		}
	}

	return nil
}

// GetBinding returns the identity's binding, or nil when none exists
func (s *VerificationService) GetBinding(ctx context.Context, identityID string, platform core.Platform) (*core.WalletBinding, error) {
	binding, err := s.bindings.GetByIdentity(ctx, core.Identity{ID: identityID, Platform: platform})
	if err == core.ErrBindingNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("binding lookup: %w", err)
	}
	return binding, nil
}

// ValidateSession checks a session token and confirms the binding it claims
// still exists, so unlinked wallets lose access immediately
func (s *VerificationService) ValidateSession(ctx context.Context, token string) (*core.SessionClaims, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return nil, err
	}

	binding, err := s.bindings.GetByIdentity(ctx, core.Identity{ID: claims.IdentityID, Platform: claims.Platform})
	if err == core.ErrBindingNotFound {
		return nil, core.ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("binding lookup: %w", err)
	}
	if !strings.EqualFold(binding.WalletAddress, claims.WalletAddress) {
		return nil, core.ErrSessionInvalid
	}

	return claims, nil
}

// generateNonce returns a 256-bit random hex token
func generateNonce() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
