package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

func newTestCacheRepository(t *testing.T, prefix string) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, prefix), mr
}

func TestCacheRepositoryNamespacesKeys(t *testing.T) {
	repo, mr := newTestCacheRepository(t, "admin-console")

	require.NoError(t, repo.Set(context.Background(), "members:list", []string{"lina"}, time.Minute))

	assert.True(t, mr.Exists("admin-console:members:list"))
	assert.False(t, mr.Exists("admin-consolemembers:list"))

	var got []string
	require.NoError(t, repo.Get(context.Background(), "members:list", &got))
	assert.Equal(t, []string{"lina"}, got)
}

func TestCacheRepositoryKeepsExistingSeparator(t *testing.T) {
	repo, mr := newTestCacheRepository(t, "admin-console:")

	require.NoError(t, repo.Set(context.Background(), "members:list", "x", time.Minute))

	assert.True(t, mr.Exists("admin-console:members:list"))
}

func TestCacheRepositoryMissingKeyIsCacheMiss(t *testing.T) {
	repo, _ := newTestCacheRepository(t, "admin-console")

	var got []string
	err := repo.Get(context.Background(), "members:list", &got)

	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPatternStaysInNamespace(t *testing.T) {
	repo, mr := newTestCacheRepository(t, "admin-console")
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "members:list", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "members:detail:"+testID, "b", time.Minute))
	require.NoError(t, repo.Set(ctx, "report:rows", "c", time.Minute))
	require.NoError(t, mr.Set("other-app:members:list", "d"))

	require.NoError(t, repo.DeleteByPattern(ctx, "members:*"))

	assert.False(t, mr.Exists("admin-console:members:list"))
	assert.False(t, mr.Exists("admin-console:members:detail:"+testID))
	assert.True(t, mr.Exists("admin-console:report:rows"))
	assert.True(t, mr.Exists("other-app:members:list"))
}

func TestCacheRepositorySetHonoursTTL(t *testing.T) {
	repo, mr := newTestCacheRepository(t, "admin-console")

	require.NoError(t, repo.Set(context.Background(), "members:list", "a", 2*time.Minute))

	assert.Equal(t, 2*time.Minute, mr.TTL("admin-console:members:list"))
	mr.FastForward(3 * time.Minute)
	assert.False(t, mr.Exists("admin-console:members:list"))
}
