package redisstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCursor_Next(t *testing.T) {
	_, client := setup(t)
	c := NewCursor(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := c.Next(ctx, "distribution:cursor:round-robin")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := c.Next(ctx, "distribution:cursor:availability")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "keys are independent")
}

func TestOTPStore_Lifecycle(t *testing.T) {
	_, client := setup(t)
	s := NewOTPStore(client)
	ctx := context.Background()
	phone := "+5511987654321"

	_, _, err := s.Get(ctx, phone)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	require.NoError(t, s.Put(ctx, phone, "123456", 5*time.Minute))
	code, attempts, err := s.Get(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Zero(t, attempts)

	n, err := s.IncrementAttempts(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a new code resets the attempts
	require.NoError(t, s.Put(ctx, phone, "654321", 5*time.Minute))
	_, attempts, err = s.Get(ctx, phone)
	require.NoError(t, err)
	assert.Zero(t, attempts)

	require.NoError(t, s.Delete(ctx, phone))
	_, _, err = s.Get(ctx, phone)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestOTPStore_Expires(t *testing.T) {
	mr, client := setup(t)
	s := NewOTPStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "+5511987654321", "123456", 5*time.Minute))
	mr.FastForward(5*time.Minute + time.Second)

	_, _, err := s.Get(ctx, "+5511987654321")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = s.IncrementAttempts(ctx, "+5511987654321")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
