package http

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletlink/adapters/store"
	"github.com/layer-3/walletlink/adapters/tokenizer"
	"github.com/layer-3/walletlink/adapters/verifier"
	"github.com/layer-3/walletlink/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	verification := service.NewVerificationService(
		store.NewMemoryChallengeStore(),
		store.NewMemoryBindingStore(),
		store.NewMemoryRateLimiter(5, time.Hour),
		verifier.NewEthVerifier(),
		tokenizer.NewJWTIssuer(signKey),
		nil,
		service.NewMessageBuilder("walletlink-test"),
	)

	return SetupRouter(verification)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig)
}

func TestVerificationFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	w, body := doJSON(t, router, http.MethodPost, "/verify/challenge", map[string]string{
		"identity_id":    "u1",
		"platform":       "discord",
		"wallet_address": address,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	nonce := body["nonce"].(string)
	message := body["message"].(string)
	require.NotEmpty(t, nonce)
	require.NotEmpty(t, body["expires_at"])

	w, body = doJSON(t, router, http.MethodPost, "/verify/complete", map[string]string{
		"nonce":     nonce,
		"signature": signMessage(t, key, message),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := body["session_token"].(string)
	require.NotEmpty(t, token)

	w, body = doJSON(t, router, http.MethodGet, "/verify/binding?identity_id=u1&platform=discord", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, address, body["wallet_address"])

	w, body = doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["identity_id"])
	assert.Equal(t, address, body["wallet_address"])

	w, _ = doJSON(t, router, http.MethodDelete, "/verify/binding", map[string]string{
		"identity_id": "u1",
		"platform":    "discord",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The session dies with the binding
	w, _ = doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/verify/binding?identity_id=u1&platform=discord", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChallengeRejectsUnknownPlatform(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/verify/challenge", map[string]string{
		"identity_id":    "u1",
		"platform":       "matrix",
		"wallet_address": "0xABC",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChallengeRateLimitedOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	req := map[string]string{
		"identity_id":    "u1",
		"platform":       "discord",
		"wallet_address": "0xABC0000000000000000000000000000000000001",
	}
	for i := 0; i < 5; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/verify/challenge", req, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, body := doJSON(t, router, http.MethodPost, "/verify/challenge", req, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Greater(t, body["retry_after"].(float64), float64(0))
}

func TestCompleteUnknownNonce(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/verify/complete", map[string]string{
		"nonce":     "never-issued",
		"signature": "0xdeadbeef",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresBearerToken(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
