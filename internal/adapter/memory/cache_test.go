package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/repair-desk/internal/adapter/memory"
	portcache "github.com/alanyang/repair-desk/internal/port/cache"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCache()

	require.NoError(t, c.Set(ctx, "admin-dashboard", []byte(`{"a":1}`), time.Minute))

	got, err := c.Get(ctx, "admin-dashboard")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestCache_Miss(t *testing.T) {
	_, err := memory.NewCache().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := memory.NewCache().WithClock(clk.Now)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))

	clk.t = clk.t.Add(999 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Millisecond)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestCache_NonPositiveTTLIsNoop(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateMany(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCache()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
	}

	require.NoError(t, c.Invalidate(ctx, "a", "c", "missing"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
	_, err = c.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "c")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
}
