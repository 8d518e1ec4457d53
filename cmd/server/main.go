package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetadmin/internal/config"
	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/repositories/mongodb"
	"assetadmin/internal/seeder"
	"assetadmin/internal/services"
	"assetadmin/pkg/database"
	"assetadmin/pkg/logger"
	"assetadmin/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	models.PasswordCost = cfg.Security.BcryptCost

	mongo, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	db := mongo.Database

	ctx := context.Background()
	if cfg.App.MigrateOnStart {
		if err := database.NewMigrator(db, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	cache, closeCache := newCache(cfg.Redis, appLogger)

	smsProvider, err := newSMSProvider(ctx, cfg.SMS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create SMS provider")
	}
	mailer, err := newMailer(cfg.SMTP)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create mailer")
	}
	storageProvider, closeStorage, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create storage provider")
	}

	var tx interfaces.TxRunner
	if cfg.Security.CascadeTransactions {
		tx = mongo
	}
	cascade := services.NewCascadeService(mongodb.NewCollectionStore(db), tx, appLogger)

	seedRepos := seeder.Repositories{
		Wallets:    mongodb.NewRepository[models.Wallet](db, models.WalletEntity.Collection),
		Roles:      mongodb.NewRepository[models.Role](db, models.RoleEntity.Collection),
		Routes:     mongodb.NewRepository[models.ProjectRoute](db, models.ProjectRouteEntity.Collection),
		RouteRoles: mongodb.NewRepository[models.RouteRole](db, models.RouteRoleEntity.Collection),
		UserRoles:  mongodb.NewRepository[models.UserRole](db, models.UserRoleEntity.Collection),
	}

	permissions := services.NewPermissionService(services.PermissionRepositories{
		Roles:      seedRepos.Roles,
		Routes:     seedRepos.Routes,
		RouteRoles: seedRepos.RouteRoles,
		UserRoles:  seedRepos.UserRoles,
	}, cache, cfg.Security.PermissionCacheTTL, cfg.Security.RBACStrict, appLogger)

	notifications := services.NewNotificationService(mailer, smsProvider, appLogger)
	auth := services.NewAuthService(services.AuthRepositories{
		Wallets: seedRepos.Wallets,
		Tokens:  mongodb.NewRepository[models.UserTokens](db, models.UserTokensEntity.Collection),
	}, permissions, notifications, cache, cfg.Security, appLogger)

	var activity services.ActivityService
	if cfg.App.ActivityLog {
		activityRepo := mongodb.NewRepository[models.ActivityLog](db, models.ActivityLogEntity.Collection)
		activity = services.NewActivityService(activityRepo, cfg.Database.QueryTimeout, appLogger)
	}

	uploads := services.NewUploadService(storageProvider, cfg.Storage.MaxFileSize, cfg.Storage.AllowedExtensions, appLogger)

	router, err := routes.SetupRouter(&routes.Dependencies{
		Auth:           auth,
		Permissions:    permissions,
		Activity:       activity,
		Uploads:        uploads,
		Entities:       routes.AdminHandlers(db, cascade, permissions, cache, appLogger),
		Database:       mongo,
		Version:        cfg.App.Version,
		MetricsEnabled: cfg.App.MetricsEnabled,
		CORSOrigins:    cfg.Security.CORSAllowedOrigins,
		TrustedProxies: cfg.Security.TrustedProxies,
		Logger:         appLogger,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to set up router")
	}

	if cfg.App.SeedOnStart {
		accounts := []seeder.Account{
			{WalletAddress: "zw5ltxhucz", Password: cfg.App.SeedUserPass, UserType: models.UserTypeUser},
			{WalletAddress: "lw420flpfs", Password: cfg.App.SeedAdminPass, UserType: models.UserTypeAdmin},
		}
		if err := seeder.New(seedRepos, accounts, permissions, appLogger).Run(ctx, router.Routes()); err != nil {
			appLogger.WithError(err).Fatal("Failed to seed database")
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shut down")
	}
	if activity != nil {
		activity.Wait()
	}
	if err := mongo.Close(); err != nil {
		appLogger.WithError(err).Error("Failed to close MongoDB")
	}
	closeCache()
	closeStorage()

	appLogger.Info("Server exited")
}
