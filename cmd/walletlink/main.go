package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletlink/adapters/events"
	"github.com/layer-3/walletlink/adapters/store"
	"github.com/layer-3/walletlink/adapters/tokenizer"
	"github.com/layer-3/walletlink/adapters/verifier"
	"github.com/layer-3/walletlink/service"
	"github.com/layer-3/walletlink/transport/http"
)

const (
	defaultRateLimitMax    = 5
	defaultRateLimitWindow = time.Hour
)

func main() {
	// Load the session signing key, or generate an ephemeral one.
	// An ephemeral key invalidates all sessions on restart, which is fine
	// for development but not for a real deployment.
	signKey, err := loadSessionKey()
	if err != nil {
		log.Fatalf("Failed to load session key: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := redis.NewClient(opts)

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "walletlink"
	}

	// Initialize Watermill Redis publisher for binding events
	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	verification := service.NewVerificationService(
		store.NewRedisChallengeStore(redisClient),
		store.NewRedisBindingStore(redisClient),
		store.NewRedisRateLimiter(redisClient, defaultRateLimitMax, defaultRateLimitWindow),
		verifier.NewEthVerifier(),
		tokenizer.NewJWTIssuer(signKey),
		events.NewWatermillPublisher(publisher),
		service.NewMessageBuilder(serviceName),
	)

	router := http.SetupRouter(verification)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadSessionKey reads a hex-encoded P-256 scalar from SESSION_KEY, falling
// back to a freshly generated key
func loadSessionKey() (*ecdsa.PrivateKey, error) {
	keyHex := os.Getenv("SESSION_KEY")
	if keyHex == "" {
		log.Println("SESSION_KEY not set, generating an ephemeral signing key")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	d, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("SESSION_KEY is not valid hex: %w", err)
	}

	curve := elliptic.P256()
	scalar := new(big.Int).SetBytes(d)
	if scalar.Sign() == 0 || scalar.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("SESSION_KEY is not a valid P-256 scalar")
	}

	key := new(ecdsa.PrivateKey)
	key.Curve = curve
	key.D = scalar
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(scalar.Bytes())
	return key, nil
}
