package verifier

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// EthVerifier recovers signer addresses from EIP-191 personal-sign signatures
// over secp256k1. It never handles private key material.
type EthVerifier struct{}

// NewEthVerifier creates a new Ethereum signature verifier
func NewEthVerifier() ports.SignatureVerifier {
	return &EthVerifier{}
}

// Recover returns the checksummed address that signed the message. Any
// malformed input surfaces as core.ErrSignatureMismatch so callers cannot
// distinguish "wrong wallet" from "bad signature bytes".
func (v *EthVerifier) Recover(message string, signature string) (string, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", core.ErrSignatureMismatch
	}
	if len(sigBytes) != crypto.SignatureLength {
		return "", core.ErrSignatureMismatch
	}

	// Wallets emit V as 27/28; go-ethereum expects 0/1
	if sigBytes[crypto.RecoveryIDOffset] >= 27 {
		sigBytes[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(message))
	pubKey, err := crypto.SigToPub(hash, sigBytes)
	if err != nil {
		return "", core.ErrSignatureMismatch
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}
