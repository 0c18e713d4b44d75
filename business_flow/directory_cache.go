package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DirectoryCache is an optional redis read cache for directory queries.
// Entries are namespaced by a generation counter so one INCR invalidates them all.
// A nil *DirectoryCache is valid and caches nothing.
type DirectoryCache struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDirectoryCache returns nil when rc is nil
func NewDirectoryCache(rc *redis.Client, prefix string, ttl time.Duration) *DirectoryCache {
	if rc == nil {
		return nil
	}
	return &DirectoryCache{rc: rc, prefix: prefix, ttl: ttl}
}

func (c *DirectoryCache) generationKey() string {
	return c.prefix + "directory:generation"
}

func (c *DirectoryCache) key(ctx context.Context, name string) (string, error) {
	gen, err := c.rc.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%sdirectory:%d:%s", c.prefix, gen, name), nil
}

// get decodes a cached value into out and reports a hit
func (c *DirectoryCache) get(ctx context.Context, name string, out any) bool {
	if c == nil {
		return false
	}

	key, err := c.key(ctx, name)
	if err != nil {
		directoryCacheTotal.WithLabelValues("error").Inc()
		return false
	}

	bs, err := c.rc.Get(ctx, key).Bytes()
	if err != nil || len(bs) == 0 {
		if !errors.Is(err, redis.Nil) && err != nil {
			directoryCacheTotal.WithLabelValues("error").Inc()
		} else {
			directoryCacheTotal.WithLabelValues("miss").Inc()
		}
		return false
	}

	if err := json.Unmarshal(bs, out); err != nil {
		directoryCacheTotal.WithLabelValues("error").Inc()
		return false
	}

	directoryCacheTotal.WithLabelValues("hit").Inc()
	return true
}

func (c *DirectoryCache) set(ctx context.Context, name string, value any) {
	if c == nil {
		return
	}

	key, err := c.key(ctx, name)
	if err != nil {
		return
	}
	bs, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.rc.Set(ctx, key, bs, c.ttl).Err()
}

// Invalidate drops every cached directory entry
func (c *DirectoryCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rc.Incr(ctx, c.generationKey()).Err(); err != nil {
		log.Printf("directory cache invalidation failed: %v", err)
	}
}
