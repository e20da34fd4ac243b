package ports

import (
	"context"

	"github.com/layer-3/walletlink/core"
)

// EventPublisher publishes binding lifecycle events for downstream consumers.
// Publishing is notification only; correctness never depends on delivery.
type EventPublisher interface {
	PublishBound(ctx context.Context, binding *core.WalletBinding) error
	PublishUnbound(ctx context.Context, identity core.Identity, walletAddress string) error
}
