// AngelaMos | 2026
// service_test.go

package guest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/testdb"
)

func newService(t *testing.T) (*guest.Service, guest.Repository) {
	t.Helper()
	repo := guest.NewRepository(testdb.Open(t))
	return guest.NewService(repo), repo
}

func TestQuotaFor(t *testing.T) {
	tests := []struct {
		count     int
		rollsLeft int
		reached   bool
	}{
		{0, 10, false},
		{3, 7, false},
		{9, 1, false},
		{10, 0, true},
		{12, 0, true},
	}

	for _, tt := range tests {
		q := guest.QuotaFor(tt.count)
		assert.Equal(t, tt.rollsLeft, q.RollsLeft, "count %d", tt.count)
		assert.Equal(t, tt.reached, q.LimitReached, "count %d", tt.count)
	}
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	token, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := svc.GetOrCreate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	fresh, err := svc.GetOrCreate(ctx, "unknown-token")
	require.NoError(t, err)
	assert.NotEqual(t, "unknown-token", fresh)
	assert.NotEqual(t, token, fresh)

	sess, err := repo.GetByToken(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.RollCount)
}

func TestResolveKeepsActivityTime(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	token, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)
	before, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	same, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, same)

	after, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, before.LastActivity.Equal(after.LastActivity))

	fresh, err := svc.Resolve(ctx, "unknown-token")
	require.NoError(t, err)
	assert.NotEqual(t, "unknown-token", fresh)
}

func TestConsumeStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	token, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)

	now := time.Now().UTC()
	for i := 1; i <= guest.GuestRollLimit; i++ {
		used, consumeErr := repo.Consume(ctx, token, now)
		require.NoError(t, consumeErr)
		assert.Equal(t, i, used)
	}

	used, err := repo.Consume(ctx, token, now)
	require.ErrorIs(t, err, core.ErrQuotaExceeded)
	assert.Equal(t, guest.GuestRollLimit, used)

	quota, err := svc.CheckLimit(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 0, quota.RollsLeft)
	assert.True(t, quota.LimitReached)

	_, err = repo.Consume(ctx, "missing", now)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestIncrementIgnoresLimit(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	token, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)

	for range guest.GuestRollLimit + 2 {
		require.NoError(t, svc.Increment(ctx, token))
	}

	sess, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, guest.GuestRollLimit+2, sess.RollCount)

	quota, err := svc.CheckLimit(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 0, quota.RollsLeft)

	require.ErrorIs(t, svc.Increment(ctx, "missing"), core.ErrNotFound)
}

func TestPurgeInactiveAndCounts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, &guest.Session{
		ID:           "old",
		Token:        "old-token",
		RollCount:    guest.GuestRollLimit,
		CreatedAt:    old,
		LastActivity: old,
	}))

	_, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Total)
	assert.Equal(t, int64(1), counts.Exhausted)

	_, err = svc.PurgeInactive(ctx, 0)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	removed, err := svc.PurgeInactive(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.GetByToken(ctx, "old-token")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateDuplicateToken(t *testing.T) {
	ctx := context.Background()
	_, repo := newService(t)

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &guest.Session{
		ID: "a", Token: "dup", CreatedAt: now, LastActivity: now,
	}))

	err := repo.Create(ctx, &guest.Session{
		ID: "b", Token: "dup", CreatedAt: now, LastActivity: now,
	})
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}
