package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"nflstats/ingestion/internal/metrics"
)

const keyPrefix = "nflstats"

// DefaultLockTTL bounds how long a crashed run can hold a family lock
const DefaultLockTTL = 2 * time.Hour

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// RedisCache coordinates family runs across workers and keeps the last
// run summary of every family.
type RedisCache struct {
	client  *redis.Client
	lockTTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return newRedisCache(client, cfg.LockTTL), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisCache{client: client, lockTTL: ttl}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// AcquireRun takes the run lock for a family. ok is false when another
// worker already holds it.
func (c *RedisCache) AcquireRun(ctx context.Context, family string) (token string, ok bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("acquire", time.Since(start).Seconds()) }()

	token, err = newToken()
	if err != nil {
		return "", false, err
	}

	ok, err = c.client.SetNX(ctx, lockKey(family), token, c.lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire run lock for %s: %w", family, err)
	}
	if !ok {
		return "", false, nil
	}

	log.Debug().Str("family", family).Dur("ttl", c.lockTTL).Msg("Run lock acquired")
	return token, true, nil
}

// ReleaseRun drops the family lock if token still owns it
func (c *RedisCache) ReleaseRun(ctx context.Context, family, token string) error {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("release", time.Since(start).Seconds()) }()

	released, err := releaseScript.Run(ctx, c.client, []string{lockKey(family)}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lock for %s: %w", family, err)
	}
	if released == 0 {
		log.Warn().Str("family", family).Msg("Run lock expired before release")
	}
	return nil
}

// RecordRun stores the summary of the latest run of a family
func (c *RedisCache) RecordRun(ctx context.Context, family string, fields map[string]any) error {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("record", time.Since(start).Seconds()) }()

	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = fmt.Sprint(v)
	}
	if _, ok := values["finished_at"]; !ok {
		values["finished_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	key := lastRunKey(family)
	if err := c.client.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("failed to record run for %s: %w", family, err)
	}
	return nil
}

// LastRun returns the stored summary of the latest run of a family, or
// nil when the family has never run.
func (c *RedisCache) LastRun(ctx context.Context, family string) (map[string]string, error) {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("last_run", time.Since(start).Seconds()) }()

	fields, err := c.client.HGetAll(ctx, lastRunKey(family)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read last run for %s: %w", family, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func lockKey(family string) string {
	return fmt.Sprintf("%s:run:%s", keyPrefix, family)
}

func lastRunKey(family string) string {
	return fmt.Sprintf("%s:lastrun:%s", keyPrefix, family)
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
