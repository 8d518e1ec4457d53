package routes

import (
	"context"

	handlers "assetadmin/internal/handlers/admin"
	"assetadmin/internal/models"
	"assetadmin/internal/repositories/mongodb"
	"assetadmin/internal/services"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Registrar mounts a set of endpoints on a router group.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

func crud[T any](db *mongo.Database, entity models.Entity, cascade services.CascadeService, log *logger.Logger, hooks ...services.WriteHook) Registrar {
	repo := mongodb.NewRepository[T](db, entity.Collection)
	service := services.NewCRUDService[T](entity, repo, cascade, hooks...)
	return handlers.NewCRUDHandler[T](service, log)
}

// AdminHandlers returns the CRUD handler of every administered entity.
func AdminHandlers(db *mongo.Database, cascade services.CascadeService, permissions services.PermissionService, cache services.CacheService, log *logger.Logger) []Registrar {
	// Writes to these collections change who may call what.
	invalidate := func(ctx context.Context) { permissions.Invalidate(ctx) }
	sessions := services.EvictSessions(cache, log)

	return []Registrar{
		crud[models.Admin](db, models.AdminEntity, cascade, log),
		crud[models.User](db, models.UserEntity, cascade, log),
		crud[models.Asset](db, models.AssetEntity, cascade, log),
		crud[models.AssetCategory](db, models.AssetCategoryEntity, cascade, log),
		crud[models.Earnings](db, models.EarningsEntity, cascade, log),
		crud[models.Order](db, models.OrderEntity, cascade, log),
		crud[models.State](db, models.StateEntity, cascade, log),
		crud[models.Wallet](db, models.WalletEntity, cascade, log, invalidate, sessions),
		crud[models.WalletTransaction](db, models.WalletTransactionEntity, cascade, log),
		crud[models.UserTokens](db, models.UserTokensEntity, cascade, log, sessions),
		crud[models.ActivityLog](db, models.ActivityLogEntity, cascade, log),
		crud[models.Role](db, models.RoleEntity, cascade, log, invalidate),
		crud[models.ProjectRoute](db, models.ProjectRouteEntity, cascade, log, invalidate),
		crud[models.RouteRole](db, models.RouteRoleEntity, cascade, log, invalidate),
		crud[models.UserRole](db, models.UserRoleEntity, cascade, log, invalidate),
	}
}
