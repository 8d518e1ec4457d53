package routes

import (
	handlers "assetadmin/internal/handlers/admin"
	"assetadmin/internal/middleware"
	"assetadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts the account endpoints. Only logout needs a token.
func SetupAuthRoutes(rg *gin.RouterGroup, auth services.AuthService, authHandler *handlers.AuthHandler) {
	g := rg.Group("/auth")
	{
		g.POST("/register", authHandler.Register)
		g.POST("/login", authHandler.Login)
		g.POST("/forgot-password", authHandler.ForgotPassword)
		g.POST("/validate-otp", authHandler.ValidateOTP)
		g.PUT("/reset-password", authHandler.ResetPassword)
		g.POST("/logout", middleware.AuthRequired(auth), authHandler.Logout)
	}
}
