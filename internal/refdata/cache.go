package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "refdata:version"
	bumpChannel     = "refdata.bump"
)

// Cache wraps Redis based caching of reference snapshots with a global
// version. Any mutation anywhere bumps the version, which invalidates every
// cached collection at once; readers then fall through to the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key for a collection with the current version.
func (c *Cache) BuildKey(ctx context.Context, collection string) (string, error) {
	if c == nil || c.client == nil {
		return "refdata:" + collection, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("refdata:%s:%d", collection, ver), nil
}

// FetchJSON loads a cached snapshot or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("refdata: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// CachedAll reads a full collection through the versioned cache. The loader
// runs on a miss and its result is stored under the current version key, so
// a Bump from any instance routes the next read back to the database. Cache
// transport failures degrade to a direct load.
func CachedAll[T any](ctx context.Context, c *Cache, collection string, load func(context.Context) ([]T, error)) ([]T, error) {
	key, err := c.BuildKey(ctx, collection)
	if err != nil {
		return load(ctx)
	}
	var (
		out     []T
		loadErr error
	)
	err = c.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := load(ctx)
		loadErr = err
		return rows, err
	})
	if err != nil {
		if loadErr != nil {
			return nil, loadErr
		}
		return load(ctx)
	}
	return out, nil
}

// Bump invalidates every cached collection by incrementing the global version
// and publishing the change so other instances reload.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bump notifications. onBump,
// when non-nil, runs after each received bump so callers can reload their
// in-memory snapshots.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string, onBump func()) error {
	if c == nil || c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != "" {
					if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
						_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
						if onBump != nil {
							onBump()
						}
						continue
					}
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
				if onBump != nil {
					onBump()
				}
			}
		}
	}()
	return nil
}
