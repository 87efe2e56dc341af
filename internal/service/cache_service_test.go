package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/repository"
)

type cachedValue struct {
	Name string `json:"name"`
}

func TestCacheServiceTakeRemovesEntry(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(repository.NewMemoryCacheRepository(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "draft:1", cachedValue{Name: "one"}, 0))

	var got cachedValue
	hit, err := svc.Take(ctx, "draft:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "one", got.Name)

	hit, err = svc.Take(ctx, "draft:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidateByPattern(t *testing.T) {
	svc := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "session:a", cachedValue{Name: "a"}, time.Minute))
	require.NoError(t, svc.Set(ctx, "session:b", cachedValue{Name: "b"}, time.Minute))
	require.NoError(t, svc.Set(ctx, "other", cachedValue{Name: "c"}, time.Minute))
	require.NoError(t, svc.Invalidate(ctx, "session:*"))

	var got cachedValue
	hit, _ := svc.Get(ctx, "session:a", &got)
	assert.False(t, hit)
	hit, _ = svc.Get(ctx, "other", &got)
	assert.True(t, hit)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, nil, false)
	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(context.Background(), "k", cachedValue{}, 0))

	var got cachedValue
	hit, err := svc.Get(context.Background(), "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}
