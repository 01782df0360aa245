//go:build integration

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *RedisCache {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	c, err := NewRedisCache(Config{Host: host, Port: port, DB: 15, LockTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRunLock(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	family := fmt.Sprintf("test_%d", time.Now().UnixNano())
	t.Cleanup(func() { c.client.Del(ctx, lockKey(family), lastRunKey(family)) })

	token, ok, err := c.AcquireRun(ctx, family)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.AcquireRun(ctx, family)
	require.NoError(t, err)
	assert.False(t, ok, "second worker must not acquire a held lock")

	require.NoError(t, c.ReleaseRun(ctx, family, "someone-else"))
	_, ok, _ = c.AcquireRun(ctx, family)
	assert.False(t, ok, "a foreign token cannot release the lock")

	require.NoError(t, c.ReleaseRun(ctx, family, token))
	_, ok, err = c.AcquireRun(ctx, family)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordRun(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	family := fmt.Sprintf("test_%d", time.Now().UnixNano())
	t.Cleanup(func() { c.client.Del(ctx, lastRunKey(family)) })

	last, err := c.LastRun(ctx, family)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, c.RecordRun(ctx, family, map[string]any{"rows": 12, "status": "success"}))

	last, err = c.LastRun(ctx, family)
	require.NoError(t, err)
	assert.Equal(t, "12", last["rows"])
	assert.Equal(t, "success", last["status"])
	assert.NotEmpty(t, last["finished_at"])
}
