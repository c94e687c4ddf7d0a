package cartcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avdonin/foodreel/pkg/apiclient"
)

func mirrorPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "cart.json")
}

func TestHydrateAndItems(t *testing.T) {
	cache := New(mirrorPath(t))

	entries := []apiclient.CartEntry{
		{ProductID: 1, Name: "margherita", Price: 9.5, Quantity: 2},
		{ProductID: 2, Name: "pepperoni", Price: 11, Quantity: 1},
	}
	require.NoError(t, cache.Hydrate(entries))

	items := cache.Items()
	require.Len(t, items, 2)
	require.Equal(t, 2, cache.Quantity(1))
	require.Equal(t, 1, cache.Quantity(2))
	require.Equal(t, 0, cache.Quantity(3))
}

func TestMirrorSurvivesRestart(t *testing.T) {
	path := mirrorPath(t)

	cache := New(path)
	require.NoError(t, cache.Hydrate([]apiclient.CartEntry{
		{ProductID: 7, Name: "salad", Price: 4, Quantity: 3},
	}))

	reloaded := New(path)
	require.Equal(t, 3, reloaded.Quantity(7))
}

func TestCorruptMirrorYieldsEmptyCache(t *testing.T) {
	path := mirrorPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cache := New(path)
	require.Len(t, cache.Items(), 0)
}

func TestClearWipesMemoryAndDisk(t *testing.T) {
	path := mirrorPath(t)

	cache := New(path)
	require.NoError(t, cache.Hydrate([]apiclient.CartEntry{
		{ProductID: 1, Quantity: 1},
	}))

	require.NoError(t, cache.Clear())
	require.Len(t, cache.Items(), 0)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// clearing an already-clear cache is fine
	require.NoError(t, cache.Clear())
}

func TestItemsReturnsCopy(t *testing.T) {
	cache := New(mirrorPath(t))
	require.NoError(t, cache.Hydrate([]apiclient.CartEntry{
		{ProductID: 1, Quantity: 1},
	}))

	items := cache.Items()
	items[0].Quantity = 99

	require.Equal(t, 1, cache.Quantity(1))
}
