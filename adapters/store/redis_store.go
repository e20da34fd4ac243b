package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const (
	challengeKeyPrefix = "challenge:"
)

// storeErr tags an infrastructure failure so callers can match it with
// errors.Is(err, core.ErrStoreUnavailable) without losing the cause
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrStoreUnavailable)
}

// RedisChallengeStore is a Redis implementation of the ChallengeStore interface
type RedisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore creates a new Redis challenge store
func NewRedisChallengeStore(client *redis.Client) ports.ChallengeStore {
	return &RedisChallengeStore{client: client}
}

// Put inserts the request keyed by nonce with the TTL as the native Redis
// expiry, so stale requests self-clean without a sweep job
func (s *RedisChallengeStore) Put(ctx context.Context, req *core.VerificationRequest, ttl time.Duration) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	ok, err := s.client.SetNX(ctx, challengeKeyPrefix+req.Nonce, payload, ttl).Result()
	if err != nil {
		return storeErr("challenge put", err)
	}
	if !ok {
		// A 256-bit random nonce colliding means something is badly wrong
		return storeErr("challenge put", fmt.Errorf("nonce %q already present", req.Nonce))
	}

	return nil
}

// Consume atomically reads and deletes the request via GETDEL, guaranteeing
// a single winner for concurrent calls on the same nonce
func (s *RedisChallengeStore) Consume(ctx context.Context, nonce string) (*core.VerificationRequest, error) {
	payload, err := s.client.GetDel(ctx, challengeKeyPrefix+nonce).Result()
	if err == redis.Nil {
		return nil, core.ErrNonceInvalid
	}
	if err != nil {
		return nil, storeErr("challenge consume", err)
	}

	var req core.VerificationRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	return &req, nil
}
