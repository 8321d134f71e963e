package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	seen        map[string]bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: map[string]bool{}}
}

func (f *fakeStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	if f.setNXError != nil {
		return false, f.setNXError
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "parking:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		f.lastDeleted = key
		delete(f.seen, key)
	}
	return nil
}

func TestCheckAndMarkProcessed(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, 24*time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	already, err := manager.CheckAndMarkProcessed(ctx, "analytics-worker", "evt-1")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, "parking:idempotency:evt:analytics-worker:evt-1", store.lastKey)
	assert.Equal(t, 24*time.Hour, store.lastTTL)

	already, err = manager.CheckAndMarkProcessed(ctx, "analytics-worker", "evt-1")
	require.NoError(t, err)
	assert.True(t, already)

	already, err = manager.CheckAndMarkProcessed(ctx, "other-consumer", "evt-1")
	require.NoError(t, err)
	assert.False(t, already, "consumers are isolated")
}

func TestCheckAndMarkProcessedPropagatesErrors(t *testing.T) {
	store := newFakeStore()
	store.setNXError = errors.New("boom")
	manager, err := NewManager(store, time.Hour)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "analytics-worker", "evt-1")
	assert.Error(t, err)
}

func TestForgetAllowsRetry(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = manager.CheckAndMarkProcessed(ctx, "analytics-worker", "evt-2")
	require.NoError(t, err)
	require.NoError(t, manager.Forget(ctx, "analytics-worker", "evt-2"))
	assert.Equal(t, "parking:idempotency:evt:analytics-worker:evt-2", store.lastDeleted)

	already, err := manager.CheckAndMarkProcessed(ctx, "analytics-worker", "evt-2")
	require.NoError(t, err)
	assert.False(t, already)
}

func TestKeyValidation(t *testing.T) {
	manager, err := NewManager(newFakeStore(), time.Hour)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), " ", "evt")
	assert.Error(t, err)
	_, err = manager.CheckAndMarkProcessed(context.Background(), "consumer", "")
	assert.Error(t, err)

	_, err = NewManager(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewManager(newFakeStore(), -time.Second)
	assert.Error(t, err)
}
