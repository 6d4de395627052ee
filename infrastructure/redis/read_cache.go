package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

const keyPrefix = "taskhub"

// kv is the subset of Client the cache needs
type kv interface {
	Get(ctx context.Context, key string) (string, error)
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// ReadCache stores entities as JSON under
// taskhub:<collection>:v<version>:<id>. Invalidate bumps the collection
// version, which orphans every older key until its TTL expires; cascades
// touching many documents need no key scan.
type ReadCache struct {
	kv    kv
	ttl   time.Duration
	group singleflight.Group
}

func NewReadCache(client *Client, ttl time.Duration) *ReadCache {
	return newReadCache(client, ttl)
}

func newReadCache(store kv, ttl time.Duration) *ReadCache {
	return &ReadCache{kv: store, ttl: ttl}
}

func versionKey(collection string) string {
	return fmt.Sprintf("%s:%s:version", keyPrefix, collection)
}

func entryKey(collection string, version int64, id string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", keyPrefix, collection, version, id)
}

func (c *ReadCache) Fetch(ctx context.Context, collection, id string, dest any, load ports.LoadFunc) error {
	version, err := c.version(ctx, collection)
	if err != nil {
		// cache unavailable: serve from the store
		logger.WarnContext(ctx, "Read cache unavailable", "collection", collection, "error", err)
		return loadInto(ctx, dest, load)
	}

	key := entryKey(collection, version, id)
	data, err := c.kv.GetBytes(ctx, key)
	switch {
	case err == nil:
		if json.Unmarshal(data, dest) == nil {
			return nil
		}
	case !errors.Is(err, redis.Nil):
		logger.WarnContext(ctx, "Read cache get failed", "key", key, "error", err)
	}

	// concurrent misses on one key share a single load, which must outlive
	// the caller that happened to start it
	loadCtx := context.WithoutCancel(ctx)
	shared, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.kv.Set(loadCtx, key, encoded, c.ttl); err != nil {
			logger.WarnContext(ctx, "Failed to cache result", "key", key, "error", err)
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(shared.([]byte), dest)
}

func (c *ReadCache) Invalidate(ctx context.Context, collection string) error {
	_, err := c.kv.Incr(ctx, versionKey(collection))
	return err
}

func (c *ReadCache) version(ctx context.Context, collection string) (int64, error) {
	raw, err := c.kv.Get(ctx, versionKey(collection))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// NopReadCache always loads from the store. It is used when Redis is not
// configured.
type NopReadCache struct{}

func NewNopReadCache() NopReadCache {
	return NopReadCache{}
}

func (NopReadCache) Fetch(ctx context.Context, collection, id string, dest any, load ports.LoadFunc) error {
	return loadInto(ctx, dest, load)
}

func (NopReadCache) Invalidate(ctx context.Context, collection string) error {
	return nil
}

func loadInto(ctx context.Context, dest any, load ports.LoadFunc) error {
	value, err := load(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}
