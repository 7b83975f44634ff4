package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(newStubCacheRepo(), nil, time.Minute, nil, false)

	var dest string
	hit, err := svc.Get(context.Background(), "key", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, svc.Set(context.Background(), "key", "value", time.Minute))
	assert.False(t, svc.Enabled())
}

func TestCacheServiceRoundTrip(t *testing.T) {
	svc := NewCacheService(newStubCacheRepo(), nil, time.Minute, nil, true)

	var dest string
	hit, err := svc.Get(context.Background(), "key", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "key", "value", 0))

	hit, err = svc.Get(context.Background(), "key", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", dest)
}

func TestCacheServiceGetFailure(t *testing.T) {
	repo := newStubCacheRepo()
	repo.getErr = assert.AnError
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest string
	hit, err := svc.Get(context.Background(), "key", &dest)
	assert.False(t, hit)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCacheServiceInvalidate(t *testing.T) {
	repo := newStubCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	require.NoError(t, svc.Set(context.Background(), "analytics:dashboard:u1:2025-03-12", "v", time.Minute))
	require.NoError(t, svc.Invalidate(context.Background(), "analytics:dashboard:*"))

	var dest string
	hit, err := svc.Get(context.Background(), "analytics:dashboard:u1:2025-03-12", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceNilReceiver(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())
}
