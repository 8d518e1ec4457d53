package routes

import (
	"context"
	"net/http"
	"time"

	handlers "assetadmin/internal/handlers/admin"
	"assetadmin/internal/middleware"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Auth        services.AuthService
	Permissions services.PermissionService
	// Activity is nil when the activity log is disabled.
	Activity services.ActivityService
	Uploads  services.UploadService
	Entities []Registrar
	Database Pinger

	Version        string
	MetricsEnabled bool
	CORSOrigins    []string
	TrustedProxies []string
	Logger         *logger.Logger
}

func SetupRouter(deps *Dependencies) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, err
	}

	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(deps.CORSOrigins))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", healthCheck(deps.Database, deps.Version))
	if deps.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	admin := router.Group("/admin")
	SetupAuthRoutes(admin, deps.Auth, handlers.NewAuthHandler(deps.Auth, deps.Logger))

	authed := admin.Group("", middleware.AuthRequired(deps.Auth))
	if deps.Activity != nil {
		authed.Use(middleware.ActivityMiddleware(deps.Activity))
	}
	SetupUploadRoutes(authed, handlers.NewUploadHandler(deps.Uploads, deps.Logger))

	guarded := authed.Group("", middleware.RequirePermission(deps.Permissions, deps.Logger))
	for _, entity := range deps.Entities {
		entity.Register(guarded)
	}

	return router, nil
}

func healthCheck(db Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
					Status:  utils.StatusFailure,
					Message: "database unreachable",
					Data:    gin.H{"version": version},
				})
				return
			}
		}
		utils.SuccessResponse(c, "healthy", gin.H{"version": version})
	}
}
