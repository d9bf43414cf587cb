package guard_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/guard"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/testhelpers"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertClaimsOnce(t *testing.T, g guard.Guard) {
	t.Helper()
	ctx := context.Background()
	id := domain.PaymentID("user-42_1772366400000")

	ok, err := g.Claim(ctx, id, domain.ChallengeBasic)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, id, domain.ChallengeBasic)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same kind must be refused")

	ok, err = g.Claim(ctx, id, domain.ChallengeExtended)
	require.NoError(t, err)
	assert.True(t, ok, "kinds are claimed independently")

	ok, err = g.Claim(ctx, "other_1", domain.ChallengeBasic)
	require.NoError(t, err)
	assert.True(t, ok, "payments are claimed independently")
}

func TestMemoryGuard(t *testing.T) {
	assertClaimsOnce(t, guard.NewMemoryGuard(time.Hour))
}

func TestMemoryGuard_ConcurrentClaims(t *testing.T) {
	g := guard.NewMemoryGuard(time.Hour)
	var wins atomic.Int32
	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := g.Claim(context.Background(), "user-42_1", domain.ChallengeThreeDS2)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestNew_WithoutRedisFallsBackToMemory(t *testing.T) {
	g, err := guard.New(config.RedisConfig{GuardTTL: time.Minute})
	require.NoError(t, err)
	_, ok := g.(*guard.MemoryGuard)
	assert.True(t, ok)
}

func TestNew_UnreachableRedisFallsBackWithError(t *testing.T) {
	g, err := guard.New(config.RedisConfig{Addr: "127.0.0.1:1", GuardTTL: time.Minute})
	assert.Error(t, err)
	_, ok := g.(*guard.MemoryGuard)
	assert.True(t, ok)
}

func TestRedisGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tr := testhelpers.SetupTestRedis(t)
	defer tr.Cleanup(t)

	client := redis.NewClient(&redis.Options{Addr: tr.Addr})
	g := guard.NewRedisGuard(client, time.Minute)
	defer g.Close()

	assertClaimsOnce(t, g)
}
