package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

type mockPropertyCatalog struct {
	mock.Mock
}

func (m *mockPropertyCatalog) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

type fakeRedis struct {
	values map[string]string
	ttl    map[string]time.Duration
	down   bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.down {
		return redis.NewStringResult("", errors.New("dial tcp: connection refused"))
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.down {
		return redis.NewStatusResult("", errors.New("dial tcp: connection refused"))
	}
	f.values[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestCachedPropertyCatalog_ReadThrough(t *testing.T) {
	backing := new(mockPropertyCatalog)
	store := newFakeRedis()
	catalog := NewCachedPropertyCatalog(backing, store, time.Minute)
	ctx := context.Background()

	property := &models.Property{ID: testProperty, SellerID: testSellerID, Title: "Lake House", Status: models.PropertyStatusApproved}
	backing.On("GetProperty", mock.Anything, testProperty).Return(property, nil).Once()

	first, err := catalog.GetProperty(ctx, testProperty)
	require.NoError(t, err)
	assert.Equal(t, property, first)
	assert.Equal(t, time.Minute, store.ttl[propertyCacheKey(testProperty)])

	second, err := catalog.GetProperty(ctx, testProperty)
	require.NoError(t, err)
	assert.Equal(t, property, second)
	backing.AssertNumberOfCalls(t, "GetProperty", 1)
}

func TestCachedPropertyCatalog_NotFoundIsNotCached(t *testing.T) {
	backing := new(mockPropertyCatalog)
	store := newFakeRedis()
	catalog := NewCachedPropertyCatalog(backing, store, time.Minute)

	backing.On("GetProperty", mock.Anything, "nope").Return(nil, newError(KindNotFound, "property nope not found"))

	_, err := catalog.GetProperty(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, store.values)
}

func TestCachedPropertyCatalog_FallsThroughWhenRedisIsDown(t *testing.T) {
	backing := new(mockPropertyCatalog)
	store := newFakeRedis()
	store.down = true
	catalog := NewCachedPropertyCatalog(backing, store, time.Minute)

	property := &models.Property{ID: testProperty, Status: models.PropertyStatusApproved}
	backing.On("GetProperty", mock.Anything, testProperty).Return(property, nil)

	got, err := catalog.GetProperty(context.Background(), testProperty)
	require.NoError(t, err)
	assert.Equal(t, property, got)
}

func TestNewCachedPropertyCatalog_DisabledWithoutTTL(t *testing.T) {
	backing := NewMemoryPropertyCatalog()
	assert.Same(t, backing, NewCachedPropertyCatalog(backing, newFakeRedis(), 0))
	assert.Same(t, backing, NewCachedPropertyCatalog(backing, nil, time.Minute))
}
