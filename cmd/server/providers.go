package main

import (
	"context"
	"fmt"

	"assetadmin/internal/config"
	"assetadmin/internal/services"
	"assetadmin/pkg/cache"
	"assetadmin/pkg/email"
	"assetadmin/pkg/logger"
	"assetadmin/pkg/sms"
	"assetadmin/pkg/storage"
)

// newCache falls back to a no-op cache when Redis is disabled or down.
func newCache(cfg *config.RedisConfig, log *logger.Logger) (services.CacheService, func()) {
	if !cfg.Enabled {
		return services.NewNoopCacheService(), func() {}
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		return services.NewNoopCacheService(), func() {}
	}

	return services.NewCacheService(redisCache, cfg.KeyPrefix), func() {
		if err := redisCache.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis")
		}
	}
}

func newSMSProvider(ctx context.Context, cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "twilio":
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	case "sns":
		return sms.NewAWSSNSProvider(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, cfg.AWS.SenderID)
	default:
		return nil, nil
	}
}

func newMailer(cfg *config.SMTPConfig) (email.Sender, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return email.NewMailer(email.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.FromEmail,
		FromName: cfg.FromName,
		SSL:      cfg.SSL,
		TLS:      cfg.TLS,
	})
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case "s3":
		provider, err := storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, cfg.AWS.CDNDomain)
		return provider, noop, err
	case "gcs":
		provider, err := storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
		if err != nil {
			return nil, noop, err
		}
		return provider, func() { _ = provider.Close() }, nil
	case "local":
		provider, err := storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
		return provider, noop, err
	default:
		return nil, noop, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
