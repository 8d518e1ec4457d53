package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type repository[T any] struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewRepository[T any](db *mongo.Database, collection string) interfaces.Repository[T] {
	return &repository[T]{
		collection: db.Collection(collection),
		now:        time.Now,
	}
}

func (r *repository[T]) Collection() string {
	return r.collection.Name()
}

func (r *repository[T]) prepare(doc *T) {
	if d, ok := any(doc).(models.Document); ok {
		d.GetBase().PrepareCreate(r.now())
	}
}

func (r *repository[T]) Create(ctx context.Context, doc *T) error {
	r.prepare(doc)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.Collection(), err)
	}
	return nil
}

func (r *repository[T]) CreateMany(ctx context.Context, docs []*T) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	items := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		r.prepare(doc)
		items = append(items, doc)
	}

	res, err := r.collection.InsertMany(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", r.Collection(), err)
	}
	return int64(len(res.InsertedIDs)), nil
}

func (r *repository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

func (r *repository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", r.Collection(), err)
	}
	return &doc, nil
}

func (r *repository[T]) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*T, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.Collection(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]*T, 0)
	for cursor.Next(ctx) {
		doc := new(T)
		if err := cursor.Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", r.Collection(), err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", r.Collection(), err)
	}
	return docs, nil
}

func (r *repository[T]) Paginate(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[T], error) {
	findOpts, err := opts.FindOptions()
	if err != nil {
		return nil, err
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	docs, err := r.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}

	return &utils.PaginatedResult[T]{
		Data:      docs,
		Paginator: utils.NewPaginator(opts, total),
	}, nil
}

func (r *repository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.Collection(), err)
	}
	return n, nil
}

func (r *repository[T]) stamp(set bson.M) bson.M {
	out := bson.M{}
	for k, v := range set {
		out[k] = v
	}
	out["updatedAt"] = r.now()
	return out
}

func (r *repository[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": r.stamp(set)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.Collection(), err)
	}
	return &doc, nil
}

func (r *repository[T]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": r.stamp(set)})
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", r.Collection(), err)
	}
	return res.ModifiedCount, nil
}

func (r *repository[T]) FindOrCreate(ctx context.Context, filter bson.M, doc *T) (*T, bool, error) {
	existing, err := r.FindOne(ctx, filter)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, false, err
	}

	if err := r.Create(ctx, doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (r *repository[T]) DeleteOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete %s: %w", r.Collection(), err)
	}
	return &doc, nil
}

func (r *repository[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", r.Collection(), err)
	}
	return res.DeletedCount, nil
}
