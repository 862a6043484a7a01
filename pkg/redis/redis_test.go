package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incrByScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local next = current + tonumber(ARGV[1])
redis.call("SET", KEYS[1], next)
return next
`

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Host = mr.Host()
	cfg.Port = port

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, 50, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 1
	cfg.DialTimeout = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewClient(ctx, cfg)
	assert.Error(t, err)
}

func TestClient_BasicCommands(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "venue:main:available", "100", time.Hour).Err())

	val, err := client.Get(ctx, "venue:main:available").Result()
	require.NoError(t, err)
	assert.Equal(t, "100", val)

	assert.Equal(t, time.Hour, mr.TTL("venue:main:available"))

	_, err = client.Get(ctx, "venue:main:missing").Result()
	assert.True(t, errors.Is(err, goredis.Nil))

	assert.NoError(t, client.Ping(ctx))
}

func TestClient_EvalShaByName(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	sha, err := client.LoadScript(ctx, "incr_by", incrByScript)
	require.NoError(t, err)
	assert.NotEmpty(t, sha)

	result, err := client.EvalShaByName(ctx, "incr_by", []string{"counter"}, 5).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(5), result)

	result, err = client.EvalShaByName(ctx, "incr_by", []string{"counter"}, 3).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(8), result)
}

func TestClient_EvalShaByName_UnknownScript(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.EvalShaByName(context.Background(), "missing", []string{"k"}).Err()
	assert.True(t, errors.Is(err, ErrScriptNotLoaded))
}

func TestClient_EvalShaByName_ReloadsAfterFlush(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.LoadScript(ctx, "incr_by", incrByScript)
	require.NoError(t, err)

	require.NoError(t, client.Client().ScriptFlush(ctx).Err())

	result, err := client.EvalShaByName(ctx, "incr_by", []string{"counter"}, 2).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), result)
}
