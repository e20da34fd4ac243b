package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const (
	// BoundTopic carries events for newly verified wallet bindings
	BoundTopic = "walletlink.bound"

	// UnboundTopic carries events for removed wallet bindings
	UnboundTopic = "walletlink.unbound"
)

// BindingEvent represents a binding lifecycle event
type BindingEvent struct {
	IdentityID    string    `json:"identity_id"`
	Platform      string    `json:"platform"`
	WalletAddress string    `json:"wallet_address"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishBound publishes a wallet-bound event
func (p *WatermillPublisher) PublishBound(ctx context.Context, binding *core.WalletBinding) error {
	return p.publish(BoundTopic, BindingEvent{
		IdentityID:    binding.IdentityID,
		Platform:      string(binding.Platform),
		WalletAddress: binding.WalletAddress,
		OccurredAt:    binding.BoundAt,
	})
}

// PublishUnbound publishes a wallet-unbound event
func (p *WatermillPublisher) PublishUnbound(ctx context.Context, identity core.Identity, walletAddress string) error {
	return p.publish(UnboundTopic, BindingEvent{
		IdentityID:    identity.ID,
		Platform:      string(identity.Platform),
		WalletAddress: walletAddress,
		OccurredAt:    time.Now(),
	})
}

func (p *WatermillPublisher) publish(topic string, event BindingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
