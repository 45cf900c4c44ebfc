package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a TTL key/value store for collaborator lookups.
// Values are opaque bytes; callers choose the encoding.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Stats() Stats
	Health(ctx context.Context) error
	Close() error
}

// Stats holds hit/miss counters
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Keys   int64 `json:"keys,omitempty"`
}

// Config holds cache configuration
type Config struct {
	Provider        string        // "memory", "redis"
	TTL             time.Duration // default TTL when Set gets ttl <= 0
	MaxKeys         int
	CleanupInterval time.Duration
	KeyPrefix       string

	RedisURL string
	PoolSize int
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "memory",
		TTL:             15 * time.Minute,
		MaxKeys:         10000,
		CleanupInterval: 5 * time.Minute,
		PoolSize:        10,
	}
}

// NewCache creates a cache instance based on configuration
func NewCache(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(config.Provider) {
	case "redis":
		return NewRedisCache(config, logger)
	case "memory", "":
		logger.Info("Using in-memory cache")
		return NewMemoryCache(config, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", config.Provider)
	}
}

// ===============================
// MEMORY CACHE
// ===============================

type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheItem
	config  *Config
	logger  *zap.Logger
	hits    int64
	misses  int64
	sets    int64
	stopCh  chan struct{}
	stopped sync.Once
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
	createdAt time.Time
}

// NewMemoryCache creates an in-memory cache with a background expiry sweep
func NewMemoryCache(config *Config, logger *zap.Logger) Cache {
	if config.MaxKeys <= 0 {
		config.MaxKeys = DefaultConfig().MaxKeys
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	c := &memoryCache{
		items:  make(map[string]cacheItem),
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, exists := c.items[c.config.KeyPrefix+key]
	c.mu.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return item.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fullKey := c.config.KeyPrefix + key
	if _, exists := c.items[fullKey]; !exists && len(c.items) >= c.config.MaxKeys {
		c.evictOldest()
	}

	now := time.Now()
	c.items[fullKey] = cacheItem{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, c.config.KeyPrefix+key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	keys := int64(len(c.items))
	c.mu.RUnlock()

	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Sets:   atomic.LoadInt64(&c.sets),
		Keys:   keys,
	}
}

func (c *memoryCache) Health(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return errors.New("memory cache is closed")
	default:
		return nil
	}
}

func (c *memoryCache) Close() error {
	c.stopped.Do(func() { close(c.stopCh) })
	return nil
}

func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("Expired cache entries removed", zap.Int("count", removed))
	}
}

// evictOldest drops the entry created first. Caller holds the write lock.
func (c *memoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.createdAt.Before(oldest) {
			oldestKey = key
			oldest = item.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// ===============================
// REDIS CACHE
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
	config *Config
	hits   int64
	misses int64
	sets   int64
}

// NewRedisCache creates a Redis backed cache and verifies the connection
func NewRedisCache(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}

	options, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		options.PoolSize = config.PoolSize
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis cache initialized",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB),
	)

	return newRedisCacheFromClient(client, config, logger), nil
}

func newRedisCacheFromClient(client *redis.Client, config *Config, logger *zap.Logger) *redisCache {
	return &redisCache{
		client: client,
		logger: logger,
		config: config,
	}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.config.KeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Failed to get from Redis",
				zap.String("key", key),
				zap.Error(err))
		}
		atomic.AddInt64(&r.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&r.hits, 1)
	return val, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.config.TTL
	}
	if err := r.client.Set(ctx, r.config.KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	atomic.AddInt64(&r.sets, 1)
	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.config.KeyPrefix+key).Err()
}

func (r *redisCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&r.hits),
		Misses: atomic.LoadInt64(&r.misses),
		Sets:   atomic.LoadInt64(&r.sets),
	}
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
