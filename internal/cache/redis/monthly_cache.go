// Package redis caches monthly KPI comparisons behind a global version key
// that is bumped whenever report data changes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"restau/internal/config"
	"restau/internal/domain"
	"restau/internal/port"
)

const (
	versionKey = "restau:monthly:version"
	keyPrefix  = "restau:monthly"
)

// MonthlyCache is a versioned Redis cache of monthly items. A nil client
// turns every call into a miss.
type MonthlyCache struct {
	client *goredis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// NewMonthlyCache wraps client. Pass a nil client to disable caching.
func NewMonthlyCache(client *goredis.Client, ttl time.Duration, log logrus.FieldLogger) port.MonthlyCache {
	return &MonthlyCache{client: client, ttl: ttl, log: log}
}

func (c *MonthlyCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, goredis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	return ver, err
}

func versionedKey(key string, ver int64) string {
	return fmt.Sprintf("%s:%s:v%d", keyPrefix, key, ver)
}

// Get looks key up under the current version and returns that version for
// the following Set.
func (c *MonthlyCache) Get(ctx context.Context, key string) ([]domain.MonthlyItem, int64, bool) {
	if c.client == nil {
		return nil, 0, false
	}
	ver, err := c.version(ctx)
	if err != nil {
		c.log.WithError(err).Warn("monthly cache: reading version")
		return nil, 0, false
	}
	payload, err := c.client.Get(ctx, versionedKey(key, ver)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.WithError(err).Warn("monthly cache: get")
		}
		return nil, ver, false
	}
	var items []domain.MonthlyItem
	if err := json.Unmarshal(payload, &items); err != nil {
		c.log.WithError(err).Warn("monthly cache: decoding entry")
		return nil, ver, false
	}
	return items, ver, true
}

// Set stores items under ver. An entry written with a version older than the
// current one is never read back.
func (c *MonthlyCache) Set(ctx context.Context, key string, ver int64, items []domain.MonthlyItem) {
	if c.client == nil || ver == 0 {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		c.log.WithError(err).Warn("monthly cache: encoding entry")
		return
	}
	if err := c.client.Set(ctx, versionedKey(key, ver), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("monthly cache: set")
	}
}

// Invalidate bumps the version so every existing entry becomes unreachable
// and expires with its TTL.
func (c *MonthlyCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}
