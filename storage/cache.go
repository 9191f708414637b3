package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kennygrant/codash/series"
)

// DefaultTTL is how long fetched records are served from the cache
const DefaultTTL = 30 * time.Minute

// CacheVersion is part of the cache key, bump it when the record format changes
const CacheVersion = "1"

// OpenRedis returns a client for addr, or nil if addr is blank
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Cache holds the last fetched records in redis for a limited time
// a cache with a nil client stores nothing
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCache returns a cache using client, ttl defaults to DefaultTTL
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		key:    "codash:records:v" + CacheVersion,
		ttl:    ttl,
	}
}

// Enabled returns true if the cache has a client
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key returns the redis key used for records
func (c *Cache) Key() string {
	return c.key
}

// Get returns the cached records, ok is false on a miss or if the cache is disabled
func (c *Cache) Get(ctx context.Context) (records []series.Record, ok bool, err error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	s, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cache get:%w", err)
	}

	records, err = series.DecodeRecords(bytes.NewBufferString(s))
	if err != nil {
		return nil, false, fmt.Errorf("storage: cache decode:%w", err)
	}
	return records, true, nil
}

// Put stores records until the ttl expires
func (c *Cache) Put(ctx context.Context, records []series.Record) error {
	if !c.Enabled() {
		return nil
	}

	var buf bytes.Buffer
	if err := series.EncodeRecords(&buf, records); err != nil {
		return fmt.Errorf("storage: cache encode:%w", err)
	}
	if err := c.client.Set(ctx, c.key, buf.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("storage: cache put:%w", err)
	}
	return nil
}

// Clear removes the cached records
func (c *Cache) Clear(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("storage: cache clear:%w", err)
	}
	return nil
}
