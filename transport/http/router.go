package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletlink/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(verification *service.VerificationService) *gin.Engine {
	router := gin.Default()

	handlers := NewVerificationHandlers(verification)

	// Verification routes, called by the chat-platform command layer
	verify := router.Group("/verify")
	{
		verify.POST("/challenge", handlers.Challenge)
		verify.POST("/complete", handlers.Complete)
		verify.GET("/binding", handlers.Binding)
		verify.DELETE("/binding", handlers.Unlink)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(SessionMiddleware(verification))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
