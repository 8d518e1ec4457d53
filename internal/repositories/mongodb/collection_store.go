package mongodb

import (
	"context"
	"fmt"
	"time"

	"assetadmin/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionStore struct {
	db  *mongo.Database
	now func() time.Time
}

func NewCollectionStore(db *mongo.Database) interfaces.CollectionStore {
	return &collectionStore{db: db, now: time.Now}
}

func (s *collectionStore) FindIDs(ctx context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s ids: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s ids: %w", collection, err)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *collectionStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (s *collectionStore) UpdateMany(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error) {
	update := bson.M{}
	for k, v := range set {
		update[k] = v
	}
	update["updatedAt"] = s.now()

	res, err := s.db.Collection(collection).UpdateMany(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", collection, err)
	}
	return res.ModifiedCount, nil
}

func (s *collectionStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}
