// Package cache provides the read-side cache used for hot listing data such
// as the category index and video detail payloads. Two providers are
// available: an in-process map for development and Redis for deployments
// with more than one instance.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
)

// Cache is the provider interface. Values are stored as JSON. Increment is
// the one read-modify-write operation: rate limit windows need the count to
// be atomic per provider, which a Get followed by a Set cannot give under
// concurrent requests.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Health(ctx context.Context) error
	Close() error
}

// New builds the provider selected by configuration.
func New(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	switch strings.ToLower(cfg.Provider) {
	case "redis":
		return newRedisCache(cfg, logger)
	case "memory", "":
		logger.Info("using in-memory cache")
		return newMemoryCache(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// Key joins the configured prefix with the given parts.
func Key(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

// ===============================
// MEMORY PROVIDER
// ===============================

type memoryCache struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	logger *zap.Logger
	stopCh chan struct{}
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func newMemoryCache(cfg *config.CacheConfig, logger *zap.Logger) *memoryCache {
	c := &memoryCache{
		items:  make(map[string]memoryItem),
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	c.mu.Lock()
	c.items[key] = memoryItem{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Increment adds one to a counter key under the write lock. The first hit in
// a window creates the key with the ttl; later hits keep the original expiry
// so the window does not slide.
func (c *memoryCache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	count := int64(0)
	expiresAt := now.Add(ttl)
	if item, exists := c.items[key]; exists && now.Before(item.expiresAt) {
		if err := json.Unmarshal(item.data, &count); err != nil {
			return 0, fmt.Errorf("failed to decode counter: %w", err)
		}
		expiresAt = item.expiresAt
	}
	count++

	data, err := json.Marshal(count)
	if err != nil {
		return 0, fmt.Errorf("failed to encode counter: %w", err)
	}
	c.items[key] = memoryItem{data: data, expiresAt: expiresAt}
	return count, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if matchPattern(key, pattern) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	return nil
}

func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

func (c *memoryCache) cleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cleaned up expired cache items",
			zap.Int("removed", removed),
			zap.Int("remaining", len(c.items)))
	}
}

// matchPattern supports the trailing-wildcard form used by the invalidation
// paths (e.g. "videotube:videos:*").
func matchPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	}
	return key == pattern
}

// ===============================
// REDIS PROVIDER
// ===============================

type redisCache struct {
	client     *redis.Client
	logger     *zap.Logger
	defaultTTL time.Duration
}

func newRedisCache(cfg *config.CacheConfig, logger *zap.Logger) (*redisCache, error) {
	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis cache initialized",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB))

	return &redisCache{client: client, logger: logger, defaultTTL: cfg.DefaultTTL}, nil
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Increment counts atomically via INCR; the expiry is only attached when the
// key is fresh so the window does not slide. A bare integer is valid JSON,
// so Get can still read the counter.
func (r *redisCache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return incr.Val(), nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		// Delete in batches so a large keyspace scan does not block Redis.
		if len(keys) >= 1000 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCache) Health(ctx context.Context) error {
	_, err := r.client.Ping(ctx).Result()
	return err
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
