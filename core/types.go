package core

import (
	"fmt"
	"time"
)

// Platform identifies the chat platform an identity belongs to
type Platform string

const (
	PlatformDiscord  Platform = "discord"
	PlatformTelegram Platform = "telegram"
)

// Valid reports whether the platform is one we recognise
func (p Platform) Valid() bool {
	switch p {
	case PlatformDiscord, PlatformTelegram:
		return true
	}
	return false
}

// Identity is a user on a chat platform
type Identity struct {
	ID       string   `json:"id"`
	Platform Platform `json:"platform"`
}

// Key renders the composite store key component for this identity
func (i Identity) Key() string {
	return fmt.Sprintf("%s:%s", i.ID, i.Platform)
}

// VerificationRequest represents one in-flight wallet verification challenge
type VerificationRequest struct {
	IdentityID    string    `json:"identity_id"`
	Platform      Platform  `json:"platform"`
	WalletAddress string    `json:"wallet_address"`
	Nonce         string    `json:"nonce"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Identity returns the requesting identity
func (r *VerificationRequest) Identity() Identity {
	return Identity{ID: r.IdentityID, Platform: r.Platform}
}

// Expired reports whether the request expiry has passed at the given instant
func (r *VerificationRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// WalletBinding is the durable association between an identity and a wallet
type WalletBinding struct {
	IdentityID    string    `json:"identity_id"`
	Platform      Platform  `json:"platform"`
	WalletAddress string    `json:"wallet_address"`
	BoundAt       time.Time `json:"bound_at"`
}

// Identity returns the bound identity
func (b *WalletBinding) Identity() Identity {
	return Identity{ID: b.IdentityID, Platform: b.Platform}
}

// SessionClaims are the claims carried by a session token
type SessionClaims struct {
	IdentityID    string
	Platform      Platform
	WalletAddress string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}
