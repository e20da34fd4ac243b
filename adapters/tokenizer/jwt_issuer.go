package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// AudienceSession discriminates session tokens from any other token this
// service may ever mint
const AudienceSession = "wallet:session"

// JWTIssuer implements the SessionIssuer interface using ES256 JWTs
type JWTIssuer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTIssuer creates a new JWT session issuer
func NewJWTIssuer(signKey *ecdsa.PrivateKey) ports.SessionIssuer {
	return &JWTIssuer{signKey: signKey}
}

// Issue signs a session token carrying the claims
func (j *JWTIssuer) Issue(claims *core.SessionClaims) (string, error) {
	tokenClaims := SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.IdentityID,
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		},
		Platform:      string(claims.Platform),
		WalletAddress: claims.WalletAddress,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, tokenClaims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Validate checks signature and expiry and returns the session claims
func (j *JWTIssuer) Validate(tokenStr string) (*core.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrSessionExpired
		}
		return nil, core.ErrSessionInvalid
	}

	if !token.Valid {
		return nil, core.ErrSessionInvalid
	}

	claims, ok := token.Claims.(*SessionTokenClaims)
	if !ok {
		return nil, core.ErrSessionInvalid
	}

	return &core.SessionClaims{
		IdentityID:    claims.Subject,
		Platform:      core.Platform(claims.Platform),
		WalletAddress: claims.WalletAddress,
		IssuedAt:      claims.IssuedAt.Time,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}
