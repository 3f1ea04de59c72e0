package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdancy/bramble/pkg/preset"
)

// RunCacheContract verifies that a Cache implementation adheres to the
// interface contract. Adapter tests call this against a fresh instance.
func RunCacheContract(t *testing.T, cache Cache) {
	ctx := context.Background()

	t.Run("Get missing key", func(t *testing.T) {
		_, err := cache.Get(ctx, "contract/none")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Set and Get", func(t *testing.T) {
		want := []byte{0x92, 0x00, 0xcb, 0x3f, 0xf0}
		require.NoError(t, cache.Set(ctx, "contract/value", want))

		got, err := cache.Get(ctx, "contract/value")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Set overwrites", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "contract/over", []byte("one")))
		require.NoError(t, cache.Set(ctx, "contract/over", []byte("two")))

		got, err := cache.Get(ctx, "contract/over")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)
	})

	t.Run("Get returns isolated copy", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "contract/iso", []byte("abc")))

		got, err := cache.Get(ctx, "contract/iso")
		require.NoError(t, err)
		got[0] = 'X'

		again, err := cache.Get(ctx, "contract/iso")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "contract/gone", []byte("x")))
		require.NoError(t, cache.Delete(ctx, "contract/gone"))

		_, err := cache.Get(ctx, "contract/gone")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Delete missing key", func(t *testing.T) {
		assert.NoError(t, cache.Delete(ctx, "contract/never-set"))
	})
}

// RunPresetStoreContract verifies that a PresetStore implementation adheres
// to the interface contract. The store must already contain the presets
// named in want, and nothing else.
func RunPresetStoreContract(t *testing.T, store PresetStore, want []string) {
	ctx := context.Background()

	t.Run("List is sorted and complete", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, names)
		assert.IsIncreasing(t, names)
	})

	t.Run("Get each listed preset", func(t *testing.T) {
		for _, name := range want {
			p, err := store.Get(ctx, name)
			require.NoError(t, err, "preset %s", name)
			assert.Equal(t, name, p.Name)
			assert.NoError(t, p.Validate())
		}
	})

	t.Run("Get unknown preset", func(t *testing.T) {
		_, err := store.Get(ctx, "contract-unknown")
		assert.ErrorIs(t, err, preset.ErrNotFound)
	})

	t.Run("Get returns isolated copy", func(t *testing.T) {
		if len(want) == 0 {
			t.Skip("store is empty")
		}
		p, err := store.Get(ctx, want[0])
		require.NoError(t, err)
		p.Depth = p.Depth + 1000

		again, err := store.Get(ctx, want[0])
		require.NoError(t, err)
		assert.NotEqual(t, p.Depth, again.Depth)
	})
}
