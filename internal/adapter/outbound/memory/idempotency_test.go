package memory

import (
	"context"
	"testing"
	"time"

	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	_, err := s.Load(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrRecordNotFound)

	require.NoError(t, s.Save(ctx, "k", []byte("body"), time.Minute))
	data, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), data)

	now = now.Add(2 * time.Minute)
	_, err = s.Load(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
}

func TestIdempotencyStore_Lock(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()

	ok, err := s.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Unlock(ctx, "k"))
	ok, err = s.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
