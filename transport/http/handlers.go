package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/service"
)

// VerificationHandlers contains HTTP handlers for the verification endpoints
type VerificationHandlers struct {
	verification *service.VerificationService
}

// NewVerificationHandlers creates new verification handlers
func NewVerificationHandlers(verification *service.VerificationService) *VerificationHandlers {
	return &VerificationHandlers{
		verification: verification,
	}
}

// Challenge handles the challenge request
func (h *VerificationHandlers) Challenge(c *gin.Context) {
	var req struct {
		IdentityID    string `json:"identity_id" binding:"required"`
		Platform      string `json:"platform" binding:"required"`
		WalletAddress string `json:"wallet_address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	platform := core.Platform(req.Platform)
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
		return
	}

	challenge, err := h.verification.GenerateChallenge(c.Request.Context(), req.IdentityID, platform, req.WalletAddress)
	if err != nil {
		var rateErr *core.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			c.Header("Retry-After", formatSeconds(rateErr.RetryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many verification attempts, try again later",
				"retry_after": int64(rateErr.RetryAfter.Seconds()),
			})
		case errors.Is(err, core.ErrWalletAlreadyBound):
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet is already linked to another account, unlink it first"})
		case errors.Is(err, core.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":      challenge.Nonce,
		"message":    challenge.Message,
		"expires_at": challenge.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Complete handles the signed-challenge submission
func (h *VerificationHandlers) Complete(c *gin.Context) {
	var req struct {
		Nonce     string `json:"nonce" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.verification.VerifyChallenge(c.Request.Context(), req.Nonce, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNonceInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Challenge expired or invalid, request a new one"})
		case errors.Is(err, core.ErrSignatureMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature verification failed"})
		case errors.Is(err, core.ErrWalletAlreadyBound):
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet is already linked to another account, unlink it first"})
		case errors.Is(err, core.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_token": token,
		"token_type":    "Bearer",
	})
}

// Binding returns the wallet bound to an identity
func (h *VerificationHandlers) Binding(c *gin.Context) {
	identityID := c.Query("identity_id")
	platform := core.Platform(c.Query("platform"))
	if identityID == "" || !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	binding, err := h.verification.GetBinding(c.Request.Context(), identityID, platform)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}
	if binding == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No wallet linked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": binding.WalletAddress,
		"bound_at":       binding.BoundAt.UTC().Format(time.RFC3339),
	})
}

// Unlink removes the wallet binding for an identity
func (h *VerificationHandlers) Unlink(c *gin.Context) {
	var req struct {
		IdentityID string `json:"identity_id" binding:"required"`
		Platform   string `json:"platform" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	platform := core.Platform(req.Platform)
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
		return
	}

	if err := h.verification.UnlinkWallet(c.Request.Context(), req.IdentityID, platform); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet unlinked"})
}

// Me returns the claims of the authenticated session
func (h *VerificationHandlers) Me(c *gin.Context) {
	claims, exists := c.Get(contextSessionKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	session := claims.(*core.SessionClaims)
	c.JSON(http.StatusOK, gin.H{
		"identity_id":    session.IdentityID,
		"platform":       session.Platform,
		"wallet_address": session.WalletAddress,
		"expires_at":     session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
