package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/service"
)

// contextSessionKey is where validated session claims live in the gin context
const contextSessionKey = "sessionClaims"

func formatSeconds(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%d", secs)
}

// SessionMiddleware creates middleware that validates session tokens.
// The binding is re-checked on every call, so unlinking a wallet cuts off
// its sessions immediately.
func SessionMiddleware(verification *service.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		claims, err := verification.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if err == core.ErrSessionExpired {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		c.Set(contextSessionKey, claims)

		c.Next()
	}
}
