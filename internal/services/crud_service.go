package services

import (
	"context"
	"errors"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/utils"
	"assetadmin/internal/validators"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CountResult is the data of bulk endpoints on leaf entities.
type CountResult struct {
	Count int64 `json:"count"`
}

// CRUDService implements the twelve admin operations for one entity.
// Removal operations return either the affected document, a CountResult, or
// the cascade map, depending on the entity.
type CRUDService[T any] interface {
	Entity() models.Entity
	Schema() *validators.Schema

	Create(ctx context.Context, doc *T, actor primitive.ObjectID) (*T, error)
	CreateMany(ctx context.Context, docs []*T, actor primitive.ObjectID) (*CountResult, error)
	List(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[T], error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, actor primitive.ObjectID) (*T, error)
	UpdateMany(ctx context.Context, filter bson.M, set bson.M, actor primitive.ObjectID) (*CountResult, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, actor primitive.ObjectID) (interface{}, error)
	SoftDeleteMany(ctx context.Context, ids []primitive.ObjectID, actor primitive.ObjectID) (interface{}, error)
	Delete(ctx context.Context, id primitive.ObjectID, dryRun bool) (interface{}, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID, dryRun bool) (interface{}, error)
}

// WriteHook runs after every successful write of an entity.
type WriteHook func(ctx context.Context)

type crudService[T any] struct {
	entity  models.Entity
	schema  *validators.Schema
	repo    interfaces.Repository[T]
	cascade CascadeService
	hooks   []WriteHook
}

func NewCRUDService[T any](entity models.Entity, repo interfaces.Repository[T], cascade CascadeService, hooks ...WriteHook) CRUDService[T] {
	return &crudService[T]{
		entity:  entity,
		schema:  validators.SchemaOf[T](),
		repo:    repo,
		cascade: cascade,
		hooks:   hooks,
	}
}

func (s *crudService[T]) Entity() models.Entity { return s.entity }

func (s *crudService[T]) Schema() *validators.Schema { return s.schema }

func (s *crudService[T]) written(ctx context.Context) {
	for _, hook := range s.hooks {
		hook(ctx)
	}
}

func (s *crudService[T]) beforeCreate(doc *T, actor primitive.ObjectID) error {
	if d, ok := any(doc).(models.Document); ok {
		base := d.GetBase()
		base.AddedBy = models.ObjectID(actor)
		base.UpdatedBy = nil
	}
	if h, ok := any(doc).(models.BeforeCreator); ok {
		return h.BeforeCreate()
	}
	return nil
}

func (s *crudService[T]) beforeUpdate(set bson.M, actor primitive.ObjectID) error {
	set["updatedBy"] = actor
	if h, ok := any(new(T)).(models.BeforeUpdater); ok {
		return h.BeforeUpdate(set)
	}
	return nil
}

func (s *crudService[T]) Create(ctx context.Context, doc *T, actor primitive.ObjectID) (*T, error) {
	if err := s.beforeCreate(doc, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.written(ctx)
	return doc, nil
}

func (s *crudService[T]) CreateMany(ctx context.Context, docs []*T, actor primitive.ObjectID) (*CountResult, error) {
	for _, doc := range docs {
		if err := s.beforeCreate(doc, actor); err != nil {
			return nil, err
		}
	}

	n, err := s.repo.CreateMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	s.written(ctx)
	return &CountResult{Count: n}, nil
}

// List returns ErrNotFound when the page is empty.
func (s *crudService[T]) List(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[T], error) {
	result, err := s.repo.Paginate(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return result, nil
}

func (s *crudService[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *crudService[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.repo.Count(ctx, filter)
}

func (s *crudService[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M, actor primitive.ObjectID) (*T, error) {
	if err := s.beforeUpdate(set, actor); err != nil {
		return nil, err
	}

	doc, err := s.repo.UpdateOne(ctx, bson.M{"_id": id}, set)
	if err != nil {
		return nil, err
	}
	s.written(ctx)
	return doc, nil
}

// UpdateMany returns ErrNotFound when nothing was modified.
func (s *crudService[T]) UpdateMany(ctx context.Context, filter bson.M, set bson.M, actor primitive.ObjectID) (*CountResult, error) {
	if err := s.beforeUpdate(set, actor); err != nil {
		return nil, err
	}

	n, err := s.repo.UpdateMany(ctx, filter, set)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, interfaces.ErrNotFound
	}
	s.written(ctx)
	return &CountResult{Count: n}, nil
}

func softDeleteBody(actor primitive.ObjectID) bson.M {
	return bson.M{
		"isDeleted": true,
		"updatedBy": actor,
	}
}

func idsFilter(ids []primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}

func (s *crudService[T]) SoftDelete(ctx context.Context, id primitive.ObjectID, actor primitive.ObjectID) (interface{}, error) {
	filter := bson.M{"_id": id}

	if s.cascade.HasDependents(s.entity) {
		counts, err := s.cascade.SoftDelete(ctx, s.entity, filter, softDeleteBody(actor))
		if err != nil {
			return nil, err
		}
		s.written(ctx)
		return counts, nil
	}

	doc, err := s.repo.UpdateOne(ctx, filter, softDeleteBody(actor))
	if err != nil {
		return nil, err
	}
	s.written(ctx)
	return doc, nil
}

func (s *crudService[T]) SoftDeleteMany(ctx context.Context, ids []primitive.ObjectID, actor primitive.ObjectID) (interface{}, error) {
	filter := idsFilter(ids)

	if s.cascade.HasDependents(s.entity) {
		counts, err := s.cascade.SoftDelete(ctx, s.entity, filter, softDeleteBody(actor))
		if err != nil {
			return nil, err
		}
		s.written(ctx)
		return counts, nil
	}

	n, err := s.repo.UpdateMany(ctx, filter, softDeleteBody(actor))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, interfaces.ErrNotFound
	}
	s.written(ctx)
	return &CountResult{Count: n}, nil
}

// Delete removes one document. With dryRun it only counts what would go.
func (s *crudService[T]) Delete(ctx context.Context, id primitive.ObjectID, dryRun bool) (interface{}, error) {
	filter := bson.M{"_id": id}

	if dryRun {
		return s.cascade.Count(ctx, s.entity, filter)
	}

	if s.cascade.HasDependents(s.entity) {
		counts, err := s.cascade.Delete(ctx, s.entity, filter)
		if err != nil {
			return nil, err
		}
		s.written(ctx)
		return counts, nil
	}

	doc, err := s.repo.DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.written(ctx)
	return doc, nil
}

func (s *crudService[T]) DeleteMany(ctx context.Context, ids []primitive.ObjectID, dryRun bool) (interface{}, error) {
	filter := idsFilter(ids)

	if dryRun {
		return s.cascade.Count(ctx, s.entity, filter)
	}

	if s.cascade.HasDependents(s.entity) {
		counts, err := s.cascade.Delete(ctx, s.entity, filter)
		if err != nil {
			return nil, err
		}
		s.written(ctx)
		return counts, nil
	}

	n, err := s.repo.DeleteMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, interfaces.ErrNotFound
	}
	s.written(ctx)
	return &CountResult{Count: n}, nil
}

// IsNotFound reports whether err means "no matching record".
func IsNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}
