package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

const defaultKeyPrefix = "storebridge:ref:"

// ReferenceCache caches slow-changing remote reference data (warehouses,
// payment methods, bank accounts) in Redis. Entries expire after the TTL;
// Refresh repopulates them wholesale.
type ReferenceCache struct {
	client    *redis.Client
	gateway   integration.ERPGateway
	log       *zap.Logger
	ttl       time.Duration
	keyPrefix string
	language  string
}

// ReferenceCacheConfig tunes the cache.
type ReferenceCacheConfig struct {
	// TTL is how long entries stay fresh
	TTL time.Duration
	// KeyPrefix namespaces keys in a shared Redis
	KeyPrefix string
	// Language requested for dictionary lookups
	Language string
}

// NewReferenceCache creates a ReferenceCache on an existing Redis client.
func NewReferenceCache(client *redis.Client, gateway integration.ERPGateway, cfg ReferenceCacheConfig, log *zap.Logger) *ReferenceCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	return &ReferenceCache{
		client:    client,
		gateway:   gateway,
		log:       log,
		ttl:       cfg.TTL,
		keyPrefix: cfg.KeyPrefix,
		language:  cfg.Language,
	}
}

func (c *ReferenceCache) key(name string) string {
	return c.keyPrefix + name
}

// cached reads a JSON entry, falling back to fetch on miss or decode failure.
func cached[T any](ctx context.Context, c *ReferenceCache, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := c.key(name)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var values []T
		if decodeErr := json.Unmarshal(raw, &values); decodeErr == nil {
			return values, nil
		}
		c.log.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("Cache read failed, falling through to remote", zap.String("key", key), zap.Error(err))
	}

	values, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, encodeErr := json.Marshal(values); encodeErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.log.Warn("Cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}
	return values, nil
}

// Warehouses returns the remote stock locations, cached.
func (c *ReferenceCache) Warehouses(ctx context.Context) ([]integration.Warehouse, error) {
	return cached(ctx, c, "warehouses", c.gateway.ListWarehouses)
}

// PaymentMethods returns the remote payment type dictionary, cached.
func (c *ReferenceCache) PaymentMethods(ctx context.Context) ([]integration.PaymentMethod, error) {
	return cached(ctx, c, "payment_methods", func(ctx context.Context) ([]integration.PaymentMethod, error) {
		return c.gateway.ListPaymentMethods(ctx, c.language)
	})
}

// BankAccounts returns the remote bank accounts, cached.
func (c *ReferenceCache) BankAccounts(ctx context.Context) ([]integration.BankAccount, error) {
	return cached(ctx, c, "bank_accounts", c.gateway.ListBankAccounts)
}

// Refresh drops and repopulates every entry from the remote.
func (c *ReferenceCache) Refresh(ctx context.Context) error {
	if err := c.Invalidate(ctx); err != nil {
		return err
	}
	if _, err := c.Warehouses(ctx); err != nil {
		return fmt.Errorf("refresh warehouses: %w", err)
	}
	if _, err := c.PaymentMethods(ctx); err != nil {
		return fmt.Errorf("refresh payment methods: %w", err)
	}
	if _, err := c.BankAccounts(ctx); err != nil {
		return fmt.Errorf("refresh bank accounts: %w", err)
	}
	c.log.Info("Reference data cache refreshed")
	return nil
}

// Invalidate removes every cached entry.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	keys := []string{c.key("warehouses"), c.key("payment_methods"), c.key("bank_accounts")}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate reference cache: %w", err)
	}
	return nil
}
