package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"assetadmin/internal/utils"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mockRepository[T any] struct {
	mock.Mock
}

func ptrArg[T any](args mock.Arguments, i int) *T {
	v := args.Get(i)
	if v == nil {
		return nil
	}
	return v.(*T)
}

func (m *mockRepository[T]) Collection() string {
	return m.Called().String(0)
}

func (m *mockRepository[T]) Create(ctx context.Context, doc *T) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockRepository[T]) CreateMany(ctx context.Context, docs []*T) (int64, error) {
	args := m.Called(ctx, docs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	args := m.Called(ctx, id)
	return ptrArg[T](args, 0), args.Error(1)
}

func (m *mockRepository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	args := m.Called(ctx, filter)
	return ptrArg[T](args, 0), args.Error(1)
}

func (m *mockRepository[T]) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*T, error) {
	args := m.Called(ctx, filter, opts)
	docs, _ := args.Get(0).([]*T)
	return docs, args.Error(1)
}

func (m *mockRepository[T]) Paginate(ctx context.Context, filter bson.M, opts *utils.PaginateOptions) (*utils.PaginatedResult[T], error) {
	args := m.Called(ctx, filter, opts)
	res, _ := args.Get(0).(*utils.PaginatedResult[T])
	return res, args.Error(1)
}

func (m *mockRepository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*T, error) {
	args := m.Called(ctx, filter, set)
	return ptrArg[T](args, 0), args.Error(1)
}

func (m *mockRepository[T]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	args := m.Called(ctx, filter, set)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository[T]) FindOrCreate(ctx context.Context, filter bson.M, doc *T) (*T, bool, error) {
	args := m.Called(ctx, filter, doc)
	return ptrArg[T](args, 0), args.Bool(1), args.Error(2)
}

func (m *mockRepository[T]) DeleteOne(ctx context.Context, filter bson.M) (*T, error) {
	args := m.Called(ctx, filter)
	return ptrArg[T](args, 0), args.Error(1)
}

func (m *mockRepository[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindIDs(ctx context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, collection, filter)
	ids, _ := args.Get(0).([]primitive.ObjectID)
	return ids, args.Error(1)
}

func (m *mockStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	args := m.Called(ctx, collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpdateMany(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error) {
	args := m.Called(ctx, collection, filter, set)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	args := m.Called(ctx, collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

// memoryCache is a CacheService backed by a map.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = b
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			n++
		}
	}
	return n, nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type txRecorder struct {
	calls int
}

func (t *txRecorder) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
