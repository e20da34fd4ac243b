package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// MemoryChallengeStore is an in-memory implementation of the ChallengeStore
// interface, primarily intended for testing. Expiry is checked lazily on
// Consume rather than by a background sweep.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]memoryChallengeEntry
	now     func() time.Time
}

type memoryChallengeEntry struct {
	req       core.VerificationRequest
	expiresAt time.Time
}

// NewMemoryChallengeStore creates a new in-memory challenge store
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		entries: make(map[string]memoryChallengeEntry),
		now:     time.Now,
	}
}

// Put inserts the request keyed by nonce
func (s *MemoryChallengeStore) Put(ctx context.Context, req *core.VerificationRequest, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[req.Nonce]; exists {
		return core.ErrStoreUnavailable
	}

	s.entries[req.Nonce] = memoryChallengeEntry{
		req:       *req,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Consume removes and returns the request for the nonce
func (s *MemoryChallengeStore) Consume(ctx context.Context, nonce string) (*core.VerificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[nonce]
	if !exists {
		return nil, core.ErrNonceInvalid
	}
	delete(s.entries, nonce)

	if s.now().After(entry.expiresAt) {
		return nil, core.ErrNonceInvalid
	}

	req := entry.req
	return &req, nil
}

// MemoryBindingStore is an in-memory implementation of the BindingStore
// interface, primarily intended for testing
type MemoryBindingStore struct {
	mu       sync.Mutex
	byKey    map[string]core.WalletBinding
	byWallet map[string]core.WalletBinding
}

// NewMemoryBindingStore creates a new in-memory binding store
func NewMemoryBindingStore() *MemoryBindingStore {
	return &MemoryBindingStore{
		byKey:    make(map[string]core.WalletBinding),
		byWallet: make(map[string]core.WalletBinding),
	}
}

// Bind records the binding, enforcing uniqueness in both directions
func (s *MemoryBindingStore) Bind(ctx context.Context, binding *core.WalletBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet := strings.ToLower(binding.WalletAddress)
	if _, exists := s.byWallet[wallet]; exists {
		return core.ErrWalletAlreadyBound
	}
	if _, exists := s.byKey[binding.Identity().Key()]; exists {
		return core.ErrWalletAlreadyBound
	}

	s.byWallet[wallet] = *binding
	s.byKey[binding.Identity().Key()] = *binding
	return nil
}

// Unbind removes the binding for the identity from both indices
func (s *MemoryBindingStore) Unbind(ctx context.Context, identity core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, exists := s.byKey[identity.Key()]
	if !exists {
		return nil
	}

	delete(s.byKey, identity.Key())
	delete(s.byWallet, strings.ToLower(binding.WalletAddress))
	return nil
}

// GetByIdentity returns the binding held by an identity
func (s *MemoryBindingStore) GetByIdentity(ctx context.Context, identity core.Identity) (*core.WalletBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, exists := s.byKey[identity.Key()]
	if !exists {
		return nil, core.ErrBindingNotFound
	}
	return &binding, nil
}

// GetByWallet returns the binding holding a wallet address
func (s *MemoryBindingStore) GetByWallet(ctx context.Context, walletAddress string) (*core.WalletBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, exists := s.byWallet[strings.ToLower(walletAddress)]
	if !exists {
		return nil, core.ErrBindingNotFound
	}
	return &binding, nil
}

// MemoryRateLimiter is an in-memory fixed-window limiter, primarily intended
// for testing
type MemoryRateLimiter struct {
	mu      sync.Mutex
	max     int64
	window  time.Duration
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(max int64, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		max:     max,
		window:  window,
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// Allow counts one attempt for the identity against the window threshold
func (l *MemoryRateLimiter) Allow(ctx context.Context, identity core.Identity) (ports.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := identity.Key()

	win, exists := l.windows[key]
	if !exists || now.After(win.expiresAt) {
		win = &memoryWindow{expiresAt: now.Add(l.window)}
		l.windows[key] = win
	}
	win.count++

	remaining := l.max - win.count
	if remaining < 0 {
		remaining = 0
	}

	result := ports.RateLimitResult{
		Allowed:   win.count <= l.max,
		Remaining: remaining,
	}
	if !result.Allowed {
		result.RetryAfter = win.expiresAt.Sub(now)
	}

	return result, nil
}
