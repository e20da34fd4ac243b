package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionTokenClaims combines standard claims with the wallet binding claims
type SessionTokenClaims struct {
	jwt.RegisteredClaims
	Platform      string `json:"platform"`
	WalletAddress string `json:"wallet_address"`
}
