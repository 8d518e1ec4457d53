package services

import (
	"context"
	"errors"
	"time"

	"assetadmin/pkg/cache"
)

var ErrCacheMiss = cache.ErrCacheMiss

// CacheService is the small cache surface the auth and permission services
// rely on. Keys are namespaced with the configured prefix.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// RedisClient is implemented by *cache.RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

type cacheService struct {
	redisClient RedisClient
	prefix      string
}

func NewCacheService(redisClient RedisClient, prefix string) CacheService {
	return &cacheService{
		redisClient: redisClient,
		prefix:      prefix,
	}
}

func (s *cacheService) key(k string) string {
	return s.prefix + k
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redisClient.Get(ctx, s.key(key), dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redisClient.Set(ctx, s.key(key), value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}
	return s.redisClient.Delete(ctx, prefixed...)
}

func (s *cacheService) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return s.redisClient.DeletePattern(ctx, s.key(pattern))
}

// noopCache is used when Redis is disabled. Every read misses.
type noopCache struct{}

func NewNoopCacheService() CacheService {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Delete(context.Context, ...string) error { return nil }

func (noopCache) DeletePattern(context.Context, string) (int64, error) { return 0, nil }

func isCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
