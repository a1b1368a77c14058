// Package pagecache keeps rendered portfolio pages in Redis, keyed by the
// version of the document they were rendered from.
package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "portfolio:page:"

// Cache is safe for concurrent use. A Cache with a nil client is disabled:
// every Get misses and Set is a no-op.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{redis: client, ttl: ttl}
}

func (c *Cache) Enabled() bool { return c != nil && c.redis != nil }

// Get returns the page rendered for version. Redis failures count as misses.
func (c *Cache) Get(ctx context.Context, version string) ([]byte, bool) {
	if !c.Enabled() || version == "" {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key(version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("pagecache: get failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores the page rendered for version.
func (c *Cache) Set(ctx context.Context, version string, page []byte) {
	if !c.Enabled() || version == "" {
		return
	}
	if err := c.redis.Set(ctx, key(version), page, c.ttl).Err(); err != nil {
		log.WithError(err).Warn("pagecache: set failed")
	}
}

func key(version string) string { return keyPrefix + version }
