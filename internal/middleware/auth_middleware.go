package middleware

import (
	"context"
	"strings"

	"assetadmin/internal/models"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MsgNoPermission = "You are not having permission to access this route."

// AuthRequired resolves the bearer token to a wallet and stores it on the
// context.
func AuthRequired(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		wallet, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		c.Set(utils.ContextUser, wallet)
		c.Set(utils.ContextUserID, wallet.ID)
		c.Set(utils.ContextToken, token)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, wallet.ID))

		c.Next()
	}
}

// RequirePermission checks the caller's roles against the route-role table
// using the matched route pattern.
func RequirePermission(permissions services.PermissionService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := permissions.Authorize(c.Request.Context(), userID, c.Request.Method, route)
		if err != nil {
			log.WithContext(c.Request.Context()).WithError(err).Error("Permission lookup failed")
			utils.InternalServerErrorResponse(c, err)
			c.Abort()
			return
		}
		if !allowed {
			log.LogSecurityEvent("permission_denied", "medium", map[string]interface{}{
				"user_id": userID.Hex(),
				"method":  c.Request.Method,
				"route":   route,
			})
			utils.UnauthorizedResponse(c, MsgNoPermission)
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func CurrentUser(c *gin.Context) *models.Wallet {
	v, ok := c.Get(utils.ContextUser)
	if !ok {
		return nil
	}
	wallet, _ := v.(*models.Wallet)
	return wallet
}

func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(utils.ContextUserID)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(utils.ContextToken)
}
