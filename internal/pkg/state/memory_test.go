package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "inventory:prod-001")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "inventory:prod-001", []byte(`{"a":1}`)))
	got, found, err := s.Get(ctx, "inventory:prod-001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, string(got))

	got[0] = 'X'
	again, _, _ := s.Get(ctx, "inventory:prod-001")
	assert.Equal(t, `{"a":1}`, string(again), "returned slices must not alias stored data")

	require.NoError(t, s.Delete(ctx, "inventory:prod-001"))
	require.NoError(t, s.Delete(ctx, "inventory:prod-001"))
	assert.Empty(t, s.Keys())
}

func TestMemoryStore_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.CompareAndSet(ctx, "k", []byte("v1"), "")
	require.NoError(t, err)
	assert.True(t, ok, "empty version inserts an absent key")

	ok, err = s.CompareAndSet(ctx, "k", []byte("v1b"), "")
	require.NoError(t, err)
	assert.False(t, ok, "empty version must fail once the key exists")

	_, version, found, err := s.GetVersioned(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))

	ok, err = s.CompareAndSet(ctx, "k", []byte("v3"), version)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must be rejected")

	_, version, _, _ = s.GetVersioned(ctx, "k")
	ok, err = s.CompareAndSet(ctx, "k", []byte("v3"), version)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "v3", string(got))
}
