package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache returns a cache whose clock the test controls
func newTestCache(t *testing.T) (*MemoryCache, *time.Time) {
	t.Helper()
	c := NewMemoryCache(time.Hour)
	t.Cleanup(c.Close)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	acc := domain.NewAttributeAccumulator()
	acc.AddIngredient("Aqua")
	acc.AddMaterials("plastic", "plastic")
	acc.MarkRecyclable(true)

	require.NoError(t, c.Set(ctx, "attributes:lux soap", acc, time.Minute))

	got, err := c.Get(ctx, "attributes:lux soap")
	require.NoError(t, err)

	m, ok := got.(map[string]interface{})
	require.True(t, ok, "values are stored in JSON form, got %T", got)
	assert.Equal(t, []interface{}{"Aqua"}, m["ingredients"])
	assert.Equal(t, map[string]interface{}{
		"materials":  []interface{}{"plastic", "plastic"},
		"recyclable": true,
	}, m["packaging"])
}

func TestMemoryCache_StoredValueIsDetached(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	acc := domain.NewAttributeAccumulator()
	acc.AddIngredient("Aqua")
	require.NoError(t, c.Set(ctx, "k", acc, time.Minute))

	acc.AddIngredient("Glycerin")

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Aqua"}, got.(map[string]interface{})["ingredients"])
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	*now = now.Add(59 * time.Second)
	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	*now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	exists, _ = c.Exists(ctx, "k")
	assert.False(t, exists)
	assert.Equal(t, 1, c.Size(), "expired entries stay until swept")

	c.sweep()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "non-existent-key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Set_Unserializable(t *testing.T) {
	c, _ := newTestCache(t)

	err := c.Set(context.Background(), "k", make(chan int), time.Minute)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), i, time.Minute))
	}
	assert.Equal(t, 5, c.Size())

	require.NoError(t, c.Delete(ctx, "k0"))
	assert.Equal(t, 4, c.Size())
	_, err := c.Get(ctx, "k0")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(0)
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("attributes:product %d", id)
			assert.NoError(t, c.Set(ctx, key, id, time.Minute))
			_, err := c.Get(ctx, key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
