package service

import (
	"fmt"
	"time"
)

// messageTemplate is the exact text a wallet signs. Any change here breaks
// verification of every in-flight challenge; the server is the sole renderer.
const messageTemplate = "Verify wallet %s for %s\n" +
	"Nonce: %s\n" +
	"Timestamp: %d\n" +
	"\n" +
	"By signing this message, you confirm that you own this wallet."

// MessageBuilder deterministically renders the challenge text binding a
// wallet address, nonce and timestamp
type MessageBuilder struct {
	serviceName string
}

// NewMessageBuilder creates a message builder for the given service name
func NewMessageBuilder(serviceName string) *MessageBuilder {
	return &MessageBuilder{serviceName: serviceName}
}

// Render produces the challenge message. The same inputs always yield the
// same bytes; verification re-renders with the stored issuance timestamp.
func (b *MessageBuilder) Render(walletAddress, nonce string, timestamp time.Time) string {
	return fmt.Sprintf(messageTemplate, walletAddress, b.serviceName, nonce, timestamp.UnixMilli())
}
