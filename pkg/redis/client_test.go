package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	client, err := NewClient("invalid://url", "test", zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_SetGet(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k1", "v1", time.Minute))

	val, err := client.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)
}

func TestClient_Get_Miss(t *testing.T) {
	_, client := setupTestRedis(t)

	_, err := client.Get(context.Background(), "missing")
	assert.True(t, IsNil(err))
}

func TestClient_SetNX_DuplicateGuard(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	key := client.KeyBuilder.KeyVoterGuard("e1", "v1")

	ok, err := client.SetNX(ctx, key, "1", TTLVoterGuard)
	require.NoError(t, err)
	assert.True(t, ok, "first SetNX should acquire the guard")

	ok, err = client.SetNX(ctx, key, "1", TTLVoterGuard)
	require.NoError(t, err)
	assert.False(t, ok, "second SetNX must observe the existing guard")
}

func TestClient_Delete(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k1", "v1", time.Minute))
	require.NoError(t, client.Delete(ctx, "k1"))

	n, err := client.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}
