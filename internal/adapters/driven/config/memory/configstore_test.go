package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"auth.tenant_id": "t"}, map[string]any{"client.burst": 3})

	assert.Equal(t, "t", store.GetString("auth.tenant_id"))
	assert.Equal(t, 3, store.GetInt("client.burst"))
	assert.Equal(t, []string{"auth.tenant_id", "client.burst"}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", int64(7)))
	require.NoError(t, store.Set("f", 2.5))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []any{"a", 1, "b"}))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 7, store.GetInt("i"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.InDelta(t, 2.5, store.GetFloat("f"), 0.0001)
	assert.InDelta(t, 7.0, store.GetFloat("i"), 0.0001)
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_Unset(t *testing.T) {
	store := NewConfigStore(map[string]any{"k": "v"})

	require.NoError(t, store.Unset("k"))
	require.NoError(t, store.Unset("k"))

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}
