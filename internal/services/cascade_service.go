package services

import (
	"context"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CascadeOperation string

const (
	CascadeDelete     CascadeOperation = "delete"
	CascadeSoftDelete CascadeOperation = "softDelete"
	CascadeCount      CascadeOperation = "count"
)

// Dependent is a collection holding references to a parent entity.
type Dependent struct {
	Entity models.Entity
	Fields []string
}

var auditFields = []string{"addedBy", "updatedBy"}

func withAudit(fields ...string) []string {
	return append(fields, auditFields...)
}

// dependents lists, per parent entity name, who points at it.
var dependents = map[string][]Dependent{
	models.UserEntity.Name: {
		{Entity: models.AdminEntity, Fields: auditFields},
		{Entity: models.UserEntity, Fields: auditFields},
		{Entity: models.AssetEntity, Fields: withAudit("sellerId")},
		{Entity: models.AssetCategoryEntity, Fields: auditFields},
		{Entity: models.OrderEntity, Fields: auditFields},
		{Entity: models.StateEntity, Fields: auditFields},
		{Entity: models.WalletEntity, Fields: withAudit("userId")},
		{Entity: models.WalletTransactionEntity, Fields: auditFields},
		{Entity: models.UserTokensEntity, Fields: withAudit("userId")},
		{Entity: models.RoleEntity, Fields: auditFields},
		{Entity: models.ProjectRouteEntity, Fields: auditFields},
		{Entity: models.RouteRoleEntity, Fields: auditFields},
		{Entity: models.UserRoleEntity, Fields: withAudit("userId")},
		{Entity: models.EarningsEntity, Fields: withAudit("userId")},
	},
	models.AssetEntity.Name: {
		{Entity: models.EarningsEntity, Fields: []string{"assetId"}},
	},
	models.AssetCategoryEntity.Name: {
		{Entity: models.AssetEntity, Fields: []string{"category", "subCategory"}},
		{Entity: models.AssetCategoryEntity, Fields: []string{"parentCategoryId"}},
	},
	models.WalletEntity.Name: {
		{Entity: models.WalletTransactionEntity, Fields: []string{"fromwalletId", "towalletId"}},
	},
	models.RoleEntity.Name: {
		{Entity: models.RouteRoleEntity, Fields: []string{"roleId"}},
		{Entity: models.UserRoleEntity, Fields: []string{"roleId"}},
	},
	models.ProjectRouteEntity.Name: {
		{Entity: models.RouteRoleEntity, Fields: []string{"routeId"}},
	},
}

// DependentsOf returns the declared dependents of entity, if any.
func DependentsOf(entity models.Entity) []Dependent {
	return dependents[entity.Name]
}

// CascadeService applies delete, soft delete and count to an entity filter
// and to every collection that references the matched documents.
type CascadeService interface {
	HasDependents(entity models.Entity) bool
	Delete(ctx context.Context, entity models.Entity, filter bson.M) (map[string]int64, error)
	SoftDelete(ctx context.Context, entity models.Entity, filter bson.M, set bson.M) (map[string]int64, error)
	Count(ctx context.Context, entity models.Entity, filter bson.M) (map[string]int64, error)
}

type cascadeService struct {
	store  interfaces.CollectionStore
	tx     interfaces.TxRunner
	logger *logger.Logger
}

// NewCascadeService builds the engine. A nil tx runs every step without a
// transaction.
func NewCascadeService(store interfaces.CollectionStore, tx interfaces.TxRunner, log *logger.Logger) CascadeService {
	return &cascadeService{
		store:  store,
		tx:     tx,
		logger: log,
	}
}

func (s *cascadeService) HasDependents(entity models.Entity) bool {
	return len(dependents[entity.Name]) > 0
}

func (s *cascadeService) Delete(ctx context.Context, entity models.Entity, filter bson.M) (map[string]int64, error) {
	return s.execute(ctx, entity, CascadeDelete, filter, nil)
}

func (s *cascadeService) SoftDelete(ctx context.Context, entity models.Entity, filter bson.M, set bson.M) (map[string]int64, error) {
	return s.execute(ctx, entity, CascadeSoftDelete, filter, set)
}

// Count never writes and never opens a transaction.
func (s *cascadeService) Count(ctx context.Context, entity models.Entity, filter bson.M) (map[string]int64, error) {
	cascadeOperations.WithLabelValues(entity.Name, string(CascadeCount)).Inc()
	return s.walk(ctx, entity, CascadeCount, filter, nil)
}

func (s *cascadeService) execute(ctx context.Context, entity models.Entity, op CascadeOperation, filter, set bson.M) (map[string]int64, error) {
	cascadeOperations.WithLabelValues(entity.Name, string(op)).Inc()

	if s.tx == nil || !s.HasDependents(entity) {
		return s.walk(ctx, entity, op, filter, set)
	}

	var result map[string]int64
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.walk(txCtx, entity, op, filter, set)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cascadeService) walk(ctx context.Context, entity models.Entity, op CascadeOperation, filter, set bson.M) (map[string]int64, error) {
	deps := dependents[entity.Name]
	if len(deps) == 0 {
		n, err := s.apply(ctx, entity.Collection, op, filter, set)
		if err != nil {
			return nil, err
		}
		return map[string]int64{entity.Name: n}, nil
	}

	ids, err := s.store.FindIDs(ctx, entity.Collection, filter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]int64{entity.Name: 0}, nil
	}

	result := make(map[string]int64, len(deps)+1)
	for _, dep := range deps {
		n, err := s.apply(ctx, dep.Entity.Collection, op, referenceFilter(dep.Fields, ids), set)
		if err != nil {
			s.logger.WithEntity(entity.Name).WithError(err).
				WithField("dependent", dep.Entity.Name).
				Error("Cascade step failed")
			return nil, err
		}
		result[dep.Entity.Name] += n
	}

	n, err := s.apply(ctx, entity.Collection, op, filter, set)
	if err != nil {
		return nil, err
	}
	result[entity.Name] += n

	s.logger.WithEntity(entity.Name).WithFields(map[string]interface{}{
		"operation": string(op),
		"parents":   len(ids),
	}).Debug("Cascade completed")

	return result, nil
}

func (s *cascadeService) apply(ctx context.Context, collection string, op CascadeOperation, filter, set bson.M) (int64, error) {
	switch op {
	case CascadeDelete:
		return s.store.DeleteMany(ctx, collection, filter)
	case CascadeSoftDelete:
		return s.store.UpdateMany(ctx, collection, filter, set)
	default:
		return s.store.Count(ctx, collection, filter)
	}
}

func referenceFilter(fields []string, ids []primitive.ObjectID) bson.M {
	clauses := make(bson.A, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: bson.M{"$in": ids}})
	}
	return bson.M{"$or": clauses}
}
