package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/apaarauth/backend/src/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityStore_Uniqueness(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	require.NoError(t, store.CreateIdentity(ctx, &domain.Identity{AparID: "123456789012", Phone: "9876543210"}))

	err := store.CreateIdentity(ctx, &domain.Identity{AparID: "123456789012", Phone: "1111111111"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdentity))

	err = store.CreateIdentity(ctx, &domain.Identity{AparID: "999999999999", Phone: "9876543210"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdentity))

	assert.Equal(t, 1, store.Count())

	ok, err := store.ExistsByAparIDOrPhone(ctx, "000000000000", "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdentityStore_ConcurrentCreate(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.CreateIdentity(ctx, &domain.Identity{AparID: "123456789012", Phone: "9876543210"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Count())
}

func TestChallengeStore_LatestWinsAndConsume(t *testing.T) {
	store := NewChallengeStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.Challenge{AparID: "123456789012", Phone: "9876543210", Code: "1111", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	second := &domain.Challenge{AparID: "123456789012", Phone: "9876543210", Code: "2222", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, store.CreateChallenge(ctx, first))
	require.NoError(t, store.CreateChallenge(ctx, second))

	latest, err := store.FindLatest(ctx, "123456789012", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "2222", latest.Code)

	ok, err := store.Consume(ctx, second.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, second.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	none, err := store.FindLatest(ctx, "123456789012", "0000000000")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestChallengeStore_DeleteExpiredBefore(t *testing.T) {
	store := NewChallengeStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateChallenge(ctx, &domain.Challenge{AparID: "123456789012", Phone: "9876543210", CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-48 * time.Hour).Add(5 * time.Minute)}))
	require.NoError(t, store.CreateChallenge(ctx, &domain.Challenge{AparID: "123456789012", Phone: "9876543210", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}))

	deleted, err := store.DeleteExpiredBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := store.CountForPair(ctx, "123456789012", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateLimiter_Window(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.nowF = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "phone:9876543210")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := limiter.Allow(ctx, "phone:9876543210")
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "phone:1111111111")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = limiter.Allow(ctx, "phone:9876543210")
	assert.True(t, ok)
}

func TestRateLimiter_EvictsExpiredWindows(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.nowF = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("phone:%010d", i))
		require.NoError(t, err)
	}
	assert.Len(t, limiter.windows, 10000)

	now = now.Add(24 * time.Hour)
	ok, err := limiter.Allow(ctx, "phone:9876543210")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, limiter.windows, 1)
}
