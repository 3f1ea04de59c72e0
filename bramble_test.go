package bramble_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/pkg/adapters/memory"
	"github.com/verdancy/bramble/pkg/lsystem"
	"github.com/verdancy/bramble/pkg/preset"
	"github.com/verdancy/bramble/pkg/turtle"
)

func plantPreset() *preset.Preset {
	return &preset.Preset{
		Name:   "plant",
		Title:  "Branching plant",
		Rules:  "P:F[+P][-P]FP",
		Depth:  5,
		Budget: 512,
		Angle:  25,
		Step:   8,
	}
}

func newEngine(t *testing.T, opts ...bramble.Option) *bramble.Engine {
	t.Helper()
	eng, err := bramble.New(opts...)
	require.NoError(t, err)
	return eng
}

func TestEngineExpand(t *testing.T) {
	eng := newEngine(t)

	exp, err := eng.Expand(context.Background(), bramble.ExpandRequest{
		Rules:  "A:F+A",
		Depth:  3,
		Budget: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "F+F+F+", exp.Commands)
	assert.Equal(t, 3, exp.DrawCount)
}

func TestEngineExpandParseError(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.Expand(context.Background(), bramble.ExpandRequest{Rules: "bad"})
	assert.ErrorIs(t, err, lsystem.ErrMalformedRule)
}

func TestEngineRenderPipeline(t *testing.T) {
	eng := newEngine(t)

	res, err := eng.Render(context.Background(), bramble.RenderRequest{
		Rules:  "A:F[+F]F",
		Depth:  1,
		Budget: 100,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Path.Len())
	assert.Equal(t, 3, res.Expansion.DrawCount)
	assert.False(t, res.CacheHit)
	assert.Empty(t, res.Preset)
}

func TestEngineRenderDeterministic(t *testing.T) {
	eng := newEngine(t)
	req := bramble.RenderRequest{
		Rules:  "P:F[+P][-P]FP",
		Depth:  6,
		Budget: 300,
		Params: turtle.Params{Angle: 25, Step: 8, Roughness: 1},
	}

	a, err := eng.Render(context.Background(), req)
	require.NoError(t, err)
	b, err := eng.Render(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Expansion, b.Expansion)
	assert.Equal(t, a.Path.Segments, b.Path.Segments)
}

func TestEngineRenderUsesCache(t *testing.T) {
	hits, misses := 0, 0
	eng := newEngine(t,
		bramble.WithCache(memory.NewCache()),
		bramble.WithLifecycleHooks(bramble.LifecycleHooks{
			OnCacheHit:  func(context.Context, *bramble.CacheEvent) { hits++ },
			OnCacheMiss: func(context.Context, *bramble.CacheEvent) { misses++ },
		}),
	)
	req := bramble.RenderRequest{
		Rules:  "A:FAFA",
		Depth:  8,
		Budget: 200,
		Params: turtle.Params{Angle: 60, Step: 2, Roughness: 1},
	}

	first, err := eng.Render(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := eng.Render(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)

	// Cached and computed results are indistinguishable apart from the flag.
	assert.Equal(t, first.Expansion, second.Expansion)
	assert.Equal(t, first.Path.Segments, second.Path.Segments)
	assert.Equal(t, first.Path.Steps, second.Path.Steps)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestEngineRenderCacheKeyIgnoresFormatting(t *testing.T) {
	cache := memory.NewCache()
	eng := newEngine(t, bramble.WithCache(cache))
	params := turtle.Params{Angle: 90, Step: 1, Roughness: 1}

	_, err := eng.Render(context.Background(), bramble.RenderRequest{
		Rules: "A:F+A", Depth: 3, Budget: 50, Params: params,
	})
	require.NoError(t, err)

	// Same grammar, different whitespace: still one cache entry.
	res, err := eng.Render(context.Background(), bramble.RenderRequest{
		Rules: " A : F + A ", Depth: 3, Budget: 50, Params: params,
	})
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Equal(t, 1, cache.Len())
}

func TestEngineRenderSurvivesCorruptCacheEntry(t *testing.T) {
	cache := memory.NewCache()
	eng := newEngine(t, bramble.WithCache(cache))
	req := bramble.RenderRequest{
		Rules:  "A:F+A",
		Depth:  3,
		Budget: 50,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1},
	}

	first, err := eng.Render(context.Background(), req)
	require.NoError(t, err)

	// Poison the single cache entry; the engine must recompute.
	ctx := context.Background()
	keys := cache.Keys()
	require.Len(t, keys, 1)
	require.NoError(t, cache.Set(ctx, keys[0], []byte("not msgpack")))

	again, err := eng.Render(ctx, req)
	require.NoError(t, err)
	assert.False(t, again.CacheHit)
	assert.Equal(t, first.Path.Segments, again.Path.Segments)
}

func TestEngineRenderStackUnderflow(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.Render(context.Background(), bramble.RenderRequest{
		Rules:  "A:F]F",
		Depth:  1,
		Budget: 10,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1},
	})
	assert.ErrorIs(t, err, turtle.ErrStackUnderflow)
}

func TestEngineLimits(t *testing.T) {
	eng := newEngine(t, bramble.WithLimits(bramble.Limits{
		MaxDepth:    4,
		MaxBudget:   100,
		MaxSegments: 10,
	}))
	ctx := context.Background()
	params := turtle.Params{Angle: 90, Step: 1, Roughness: 1}

	_, err := eng.Expand(ctx, bramble.ExpandRequest{Rules: "A:F", Depth: 5, Budget: 10})
	assert.ErrorIs(t, err, bramble.ErrLimitExceeded)

	_, err = eng.Expand(ctx, bramble.ExpandRequest{Rules: "A:F", Depth: 1, Budget: 101})
	assert.ErrorIs(t, err, bramble.ErrLimitExceeded)

	_, err = eng.Render(ctx, bramble.RenderRequest{
		Rules: "A:F", Depth: 1, Budget: 10,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1, MaxSegments: 11},
	})
	assert.ErrorIs(t, err, bramble.ErrLimitExceeded)

	// The engine-wide ceiling applies when the request leaves the cap open.
	res, err := eng.Render(ctx, bramble.RenderRequest{
		Rules: "A:FA", Depth: 4, Budget: 100, Params: params,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Path.Len(), 10)
}

func TestEngineRejectsNonPositiveLimits(t *testing.T) {
	_, err := bramble.New(bramble.WithLimits(bramble.Limits{MaxDepth: 0, MaxBudget: 1, MaxSegments: 1}))
	assert.Error(t, err)
}

func TestEngineRenderPreset(t *testing.T) {
	store, err := memory.NewPresetStore(plantPreset())
	require.NoError(t, err)
	eng := newEngine(t, bramble.WithPresetStore(store))

	res, err := eng.RenderPreset(context.Background(), "plant", nil)
	require.NoError(t, err)
	assert.Equal(t, "plant", res.Preset)
	assert.Positive(t, res.Path.Len())
}

func TestEngineRenderPresetOverrides(t *testing.T) {
	store, err := memory.NewPresetStore(plantPreset())
	require.NoError(t, err)
	eng := newEngine(t, bramble.WithPresetStore(store))
	ctx := context.Background()

	base, err := eng.RenderPreset(ctx, "plant", nil)
	require.NoError(t, err)

	shallow, err := eng.RenderPreset(ctx, "plant", map[string]any{"depth": 1})
	require.NoError(t, err)
	assert.Less(t, shallow.Path.Len(), base.Path.Len())

	_, err = eng.RenderPreset(ctx, "plant", map[string]any{"unknown_knob": 1})
	assert.ErrorIs(t, err, preset.ErrInvalid)
}

func TestEngineRenderPresetNotFound(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.RenderPreset(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, preset.ErrNotFound)
}

func TestEngineValidate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	assert.NoError(t, eng.Validate(ctx, "A:F[+A][-A]"))
	assert.ErrorIs(t, eng.Validate(ctx, ""), lsystem.ErrNoRules)
	assert.ErrorIs(t, eng.Validate(ctx, "oops"), lsystem.ErrMalformedRule)
}

func TestEngineHooksObserveRender(t *testing.T) {
	var expands, renders int
	var lastRender *bramble.RenderEvent

	eng := newEngine(t, bramble.WithLifecycleHooks(bramble.LifecycleHooks{
		OnExpand: func(_ context.Context, ev *bramble.ExpandEvent) { expands++ },
		OnRender: func(_ context.Context, ev *bramble.RenderEvent) {
			renders++
			lastRender = ev
		},
	}))

	_, err := eng.Expand(context.Background(), bramble.ExpandRequest{Rules: "A:F", Depth: 1, Budget: 10})
	require.NoError(t, err)

	_, err = eng.Render(context.Background(), bramble.RenderRequest{
		Rules: "A:FFF", Depth: 1, Budget: 10,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, expands)
	assert.Equal(t, 1, renders)
	require.NotNil(t, lastRender)
	assert.Equal(t, bramble.EventRender, lastRender.Type)
	assert.Equal(t, 3, lastRender.Segments)
	assert.False(t, lastRender.Timestamp.IsZero())
}
