package state

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshop/internal/pkg/redis"
)

func newMockRedisStore(t *testing.T) (*RedisStore, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	store, err := NewRedisStore(redis.NewClientFrom(db))
	require.NoError(t, err)
	return store, mock
}

func TestRedisStore_Get(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockRedisStore(t)

	mock.ExpectGet("inventory:prod-001").SetVal(`{"product_id":"prod-001"}`)
	mock.ExpectGet("inventory:missing").RedisNil()
	mock.ExpectGet("inventory:broken").SetErr(errors.New("connection refused"))

	value, found, err := store.Get(ctx, "inventory:prod-001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"product_id":"prod-001"}`, string(value))

	_, found, err = store.Get(ctx, "inventory:missing")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = store.Get(ctx, "inventory:broken")
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SetDelete(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockRedisStore(t)

	mock.ExpectSet("reservation:r-1", []byte(`{}`), 0).SetVal("OK")
	mock.ExpectDel("reservation:r-1").SetVal(1)

	require.NoError(t, store.Set(ctx, "reservation:r-1", []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, "reservation:r-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockRedisStore(t)
	sha := goredis.NewScript(casScript).Hash()

	mock.ExpectGet("inventory:prod-001").SetVal("old")
	mock.ExpectEvalSha(sha, []string{"inventory:prod-001"}, "old", "new").SetVal(int64(1))
	mock.ExpectEvalSha(sha, []string{"inventory:prod-001"}, "old", "newer").SetVal(int64(0))

	_, version, found, err := store.GetVersioned(ctx, "inventory:prod-001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "old", version)

	ok, err := store.CompareAndSet(ctx, "inventory:prod-001", []byte("new"), version)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CompareAndSet(ctx, "inventory:prod-001", []byte("newer"), version)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
