package middleware

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdancy/bramble/pkg/adapters/memory"
	"github.com/verdancy/bramble/pkg/ports"
)

func TestCompressionContract(t *testing.T) {
	cache := NewCompression()(memory.NewCache())
	defer cache.Close()

	ports.RunCacheContract(t, cache)
}

func TestCompressionShrinksStoredValue(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewCache()
	cache := NewCompression()(backing)
	defer cache.Close()

	// Repetitive float runs, the shape of an encoded path.
	value := bytes.Repeat([]byte("12.5,0.25;12.5,6.25;"), 2048)
	require.NoError(t, cache.Set(ctx, "big", value))

	stored, err := backing.Get(ctx, "big")
	require.NoError(t, err)
	assert.True(t, isGzip(stored), "stored value should carry a gzip header")
	assert.Less(t, len(stored), len(value))

	got, err := cache.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCompressionPassesThroughPlainEntries(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewCache()
	cache := NewCompression()(backing)
	defer cache.Close()

	require.NoError(t, backing.Set(ctx, "legacy", []byte("plain bytes")))

	got, err := cache.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain bytes"), got)
}

func TestCompressionRejectsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewCache()
	cache := NewCompression()(backing)
	defer cache.Close()

	// Gzip magic followed by garbage.
	require.NoError(t, backing.Set(ctx, "corrupt", []byte{0x1f, 0x8b, 0xff, 0xff, 0x00}))

	_, err := cache.Get(ctx, "corrupt")
	assert.ErrorContains(t, err, "decompress")
}

func TestCompressionLevelFallback(t *testing.T) {
	cache := NewCompressionLevel(99)(memory.NewCache())
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []byte("value")))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}
