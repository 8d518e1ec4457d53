package interfaces

import (
	"context"
	"errors"

	"assetadmin/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("record not found")

// Repository is the document-store contract every entity is served through.
type Repository[T any] interface {
	Collection() string

	Create(ctx context.Context, doc *T) error
	CreateMany(ctx context.Context, docs []*T) (int64, error)

	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*T, error)
	Paginate(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[T], error)
	Count(ctx context.Context, filter bson.M) (int64, error)

	// UpdateOne applies $set and returns the document after the update.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*T, error)
	// UpdateMany returns the number of modified documents.
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	// FindOrCreate inserts doc unless a document matches filter.
	FindOrCreate(ctx context.Context, filter bson.M, doc *T) (*T, bool, error)

	// DeleteOne removes one document and returns it.
	DeleteOne(ctx context.Context, filter bson.M) (*T, error)
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}

// CollectionStore runs untyped operations by collection name. The cascade
// engine fans out through it.
type CollectionStore interface {
	FindIDs(ctx context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error)
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
	UpdateMany(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
}

// TxRunner runs fn inside a transaction when the deployment supports it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
