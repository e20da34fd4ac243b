package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const (
	bindingKeyPrefix = "binding:"
	walletKeyPrefix  = "wallet:"
)

// RedisBindingStore is a Redis implementation of the BindingStore interface.
// It keeps a forward index binding:<id>:<platform> and a reverse index
// wallet:<address>, both holding the serialized binding.
type RedisBindingStore struct {
	client *redis.Client
}

// NewRedisBindingStore creates a new Redis binding store
func NewRedisBindingStore(client *redis.Client) ports.BindingStore {
	return &RedisBindingStore{client: client}
}

func bindingKey(identity core.Identity) string {
	return bindingKeyPrefix + identity.Key()
}

func walletKey(address string) string {
	// Wallet addresses compare case-insensitively
	return walletKeyPrefix + strings.ToLower(address)
}

// Bind inserts the binding into both indices. The reverse index is claimed
// first via SETNX so a wallet can only ever belong to one identity; the
// forward index is then claimed the same way, with the reverse entry rolled
// back if the identity turns out to already hold a binding.
func (s *RedisBindingStore) Bind(ctx context.Context, binding *core.WalletBinding) error {
	payload, err := json.Marshal(binding)
	if err != nil {
		return fmt.Errorf("failed to marshal binding: %w", err)
	}

	revKey := walletKey(binding.WalletAddress)
	ok, err := s.client.SetNX(ctx, revKey, payload, 0).Result()
	if err != nil {
		return storeErr("binding reverse insert", err)
	}
	if !ok {
		return core.ErrWalletAlreadyBound
	}

	ok, err = s.client.SetNX(ctx, bindingKey(binding.Identity()), payload, 0).Result()
	if err != nil {
		// Ambiguous forward state: roll back the reverse claim and fail closed
		s.client.Del(ctx, revKey)
		return storeErr("binding forward insert", err)
	}
	if !ok {
		s.client.Del(ctx, revKey)
		return core.ErrWalletAlreadyBound
	}

	return nil
}

// Unbind removes both index entries for the identity's binding
func (s *RedisBindingStore) Unbind(ctx context.Context, identity core.Identity) error {
	binding, err := s.GetByIdentity(ctx, identity)
	if err == core.ErrBindingNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, bindingKey(identity))
	pipe.Del(ctx, walletKey(binding.WalletAddress))
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("binding delete", err)
	}

	return nil
}

// GetByIdentity returns the binding held by an identity
func (s *RedisBindingStore) GetByIdentity(ctx context.Context, identity core.Identity) (*core.WalletBinding, error) {
	return s.get(ctx, bindingKey(identity))
}

// GetByWallet returns the binding holding a wallet address
func (s *RedisBindingStore) GetByWallet(ctx context.Context, walletAddress string) (*core.WalletBinding, error) {
	return s.get(ctx, walletKey(walletAddress))
}

func (s *RedisBindingStore) get(ctx context.Context, key string) (*core.WalletBinding, error) {
	payload, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, core.ErrBindingNotFound
	}
	if err != nil {
		return nil, storeErr("binding get", err)
	}

	var binding core.WalletBinding
	if err := json.Unmarshal([]byte(payload), &binding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal binding: %w", err)
	}

	return &binding, nil
}
