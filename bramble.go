package bramble

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verdancy/bramble/pkg/adapters/memory"
	"github.com/verdancy/bramble/pkg/lsystem"
	"github.com/verdancy/bramble/pkg/ports"
	"github.com/verdancy/bramble/pkg/preset"
	"github.com/verdancy/bramble/pkg/turtle"
)

// ErrLimitExceeded is returned when a request asks for more depth, budget
// or segments than the engine is configured to allow.
var ErrLimitExceeded = errors.New("limit exceeded")

// Limits bounds what a single request may ask of the engine.
type Limits struct {
	MaxDepth    int
	MaxBudget   int
	MaxSegments int
}

// DefaultLimits are generous enough for interactive art but keep a single
// request from monopolizing a server.
var DefaultLimits = Limits{
	MaxDepth:    64,
	MaxBudget:   200_000,
	MaxSegments: 200_000,
}

// ExpandRequest asks for a grammar expansion without interpretation.
type ExpandRequest struct {
	Rules  string `json:"rules"`
	Depth  int    `json:"depth"`
	Budget int    `json:"budget"`
}

// RenderRequest asks for the full pipeline: parse, expand, trace.
type RenderRequest struct {
	Rules  string        `json:"rules"`
	Depth  int           `json:"depth"`
	Budget int           `json:"budget"`
	Params turtle.Params `json:"params"`
}

// Result is the outcome of a render.
type Result struct {
	Expansion lsystem.Expansion `json:"expansion"`
	Path      turtle.Path       `json:"path"`
	// Preset is set when the render was resolved through a named preset.
	Preset string `json:"preset,omitempty"`
	// CacheHit is true when the result came from the render cache.
	CacheHit bool `json:"cache_hit,omitempty"`
	// Elapsed is the server-side time spent producing the result.
	Elapsed time.Duration `json:"elapsed"`
}

// grammarCacheSize bounds the memoized parse results; the map is flushed
// wholesale when it grows past this, which is simpler than an LRU and
// harmless for a cache this cheap to refill.
const grammarCacheSize = 256

// Engine is the high-level entry point for the Bramble library.
// It composes the pure pipeline stages with presets, caching and hooks.
type Engine struct {
	cache   ports.Cache
	presets ports.PresetStore
	hooks   LifecycleHooks
	logger  *slog.Logger
	limits  Limits

	mu       sync.Mutex
	grammars map[string]*lsystem.Grammar
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithCache enables render caching through the given adapter.
func WithCache(cache ports.Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithPresetStore injects a preset source, replacing the default empty
// in-memory store.
func WithPresetStore(store ports.PresetStore) Option {
	return func(e *Engine) {
		e.presets = store
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLimits overrides the default request limits.
func WithLimits(limits Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// New initializes a new Bramble Engine.
// Without options it renders uncached, with no presets and the default
// limits; every collaborator can be swapped via options.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		limits:   DefaultLimits,
		grammars: make(map[string]*lsystem.Grammar),
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.presets == nil {
		store, err := memory.NewPresetStore()
		if err != nil {
			return nil, err
		}
		eng.presets = store
	}

	// Ensure logger is initialized so collaborators never see nil.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if eng.limits.MaxDepth <= 0 || eng.limits.MaxBudget <= 0 || eng.limits.MaxSegments <= 0 {
		return nil, fmt.Errorf("limits must be positive, got %+v", eng.limits)
	}

	return eng, nil
}

// Validate parses the grammar and reports the first problem found.
func (e *Engine) Validate(ctx context.Context, rules string) error {
	_, err := e.grammar(rules)
	return err
}

// Expand parses and expands the grammar without tracing it.
func (e *Engine) Expand(ctx context.Context, req ExpandRequest) (*lsystem.Expansion, error) {
	if err := e.checkExpandLimits(req.Depth, req.Budget); err != nil {
		return nil, err
	}

	g, err := e.grammar(req.Rules)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	exp := g.Expand(req.Depth, req.Budget)
	elapsed := time.Since(start)

	e.hooks.fireExpand(ctx, &ExpandEvent{
		Depth:     req.Depth,
		Budget:    req.Budget,
		DrawCount: exp.DrawCount,
		Dropped:   exp.Dropped,
		Truncated: exp.Truncated,
		Elapsed:   elapsed,
	})
	e.logger.DebugContext(ctx, "grammar expanded",
		"depth", req.Depth,
		"budget", req.Budget,
		"draw_count", exp.DrawCount,
		"truncated", exp.Truncated,
	)

	return exp, nil
}

// Render runs the full pipeline, consulting the cache when one is
// configured. Identical requests yield identical results whether or not
// they were served from cache.
func (e *Engine) Render(ctx context.Context, req RenderRequest) (*Result, error) {
	return e.render(ctx, req, "")
}

// RenderPreset renders a named preset, optionally overriding individual
// fields. Override keys follow the preset's field names ("depth",
// "angle_delta", ...).
func (e *Engine) RenderPreset(ctx context.Context, name string, overrides map[string]any) (*Result, error) {
	p, err := e.presets.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	merged, err := preset.Merge(p, overrides)
	if err != nil {
		return nil, err
	}

	return e.render(ctx, RenderRequest{
		Rules:  merged.Rules,
		Depth:  merged.Depth,
		Budget: merged.Budget,
		Params: merged.Params(),
	}, name)
}

func (e *Engine) render(ctx context.Context, req RenderRequest, presetName string) (*Result, error) {
	if err := e.checkRenderLimits(req); err != nil {
		return nil, err
	}

	g, err := e.grammar(req.Rules)
	if err != nil {
		return nil, err
	}

	params := e.clampParams(req.Params)
	key := renderKey(g, req.Depth, req.Budget, params)
	start := time.Now()

	if res, ok := e.cachedResult(ctx, key); ok {
		res.Preset = presetName
		res.CacheHit = true
		res.Elapsed = time.Since(start)
		e.fireRenderEvent(ctx, req, res)
		return res, nil
	}

	exp := g.Expand(req.Depth, req.Budget)
	path, err := turtle.Trace(exp.Commands, params)
	if err != nil {
		return nil, fmt.Errorf("trace failed: %w", err)
	}

	res := &Result{Expansion: *exp, Path: *path, Preset: presetName}
	e.storeResult(ctx, key, res)
	res.Elapsed = time.Since(start)
	e.fireRenderEvent(ctx, req, res)

	return res, nil
}

// Presets lists the names known to the preset store.
func (e *Engine) Presets(ctx context.Context) ([]string, error) {
	return e.presets.List(ctx)
}

// Preset returns the named preset definition.
func (e *Engine) Preset(ctx context.Context, name string) (*preset.Preset, error) {
	return e.presets.Get(ctx, name)
}

// Limits returns the engine's configured request limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Close releases the cache, if one was configured.
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// grammar parses rules, memoizing the result by source text.
func (e *Engine) grammar(rules string) (*lsystem.Grammar, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g, ok := e.grammars[rules]; ok {
		return g, nil
	}
	g, err := lsystem.Parse(rules)
	if err != nil {
		return nil, err
	}
	if len(e.grammars) >= grammarCacheSize {
		e.grammars = make(map[string]*lsystem.Grammar)
	}
	e.grammars[rules] = g
	return g, nil
}

func (e *Engine) checkExpandLimits(depth, budget int) error {
	if depth > e.limits.MaxDepth {
		return fmt.Errorf("depth %d exceeds maximum %d: %w", depth, e.limits.MaxDepth, ErrLimitExceeded)
	}
	if budget > e.limits.MaxBudget {
		return fmt.Errorf("budget %d exceeds maximum %d: %w", budget, e.limits.MaxBudget, ErrLimitExceeded)
	}
	return nil
}

func (e *Engine) checkRenderLimits(req RenderRequest) error {
	if err := e.checkExpandLimits(req.Depth, req.Budget); err != nil {
		return err
	}
	if req.Params.MaxSegments > e.limits.MaxSegments {
		return fmt.Errorf("max_segments %d exceeds maximum %d: %w",
			req.Params.MaxSegments, e.limits.MaxSegments, ErrLimitExceeded)
	}
	return nil
}

// clampParams applies the engine-wide segment ceiling when the request
// leaves the cap open.
func (e *Engine) clampParams(p turtle.Params) turtle.Params {
	if p.MaxSegments <= 0 || p.MaxSegments > e.limits.MaxSegments {
		p.MaxSegments = e.limits.MaxSegments
	}
	return p
}

// cacheEnvelope is the msgpack layout of a cached render.
type cacheEnvelope struct {
	Expansion lsystem.Expansion `msgpack:"expansion"`
	Path      turtle.Path       `msgpack:"path"`
}

func (e *Engine) cachedResult(ctx context.Context, key string) (*Result, bool) {
	if e.cache == nil {
		return nil, false
	}
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			e.logger.WarnContext(ctx, "cache get failed", "err", err, "key", key)
		}
		e.hooks.fireCacheMiss(ctx, key)
		return nil, false
	}

	var env cacheEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		// A corrupt entry is dropped and recomputed.
		e.logger.WarnContext(ctx, "cache entry corrupt, dropping", "err", err, "key", key)
		_ = e.cache.Delete(ctx, key)
		e.hooks.fireCacheMiss(ctx, key)
		return nil, false
	}

	e.hooks.fireCacheHit(ctx, key)
	return &Result{Expansion: env.Expansion, Path: env.Path}, true
}

func (e *Engine) storeResult(ctx context.Context, key string, res *Result) {
	if e.cache == nil {
		return
	}
	data, err := msgpack.Marshal(&cacheEnvelope{Expansion: res.Expansion, Path: res.Path})
	if err != nil {
		e.logger.WarnContext(ctx, "cache encode failed", "err", err, "key", key)
		return
	}
	if err := e.cache.Set(ctx, key, data); err != nil {
		// Cache failures never fail the render.
		e.logger.WarnContext(ctx, "cache set failed", "err", err, "key", key)
	}
}

func (e *Engine) fireRenderEvent(ctx context.Context, req RenderRequest, res *Result) {
	e.hooks.fireRender(ctx, &RenderEvent{
		Preset:    res.Preset,
		Depth:     req.Depth,
		Budget:    req.Budget,
		DrawCount: res.Expansion.DrawCount,
		Segments:  res.Path.Len(),
		Steps:     res.Path.Steps,
		Truncated: res.Expansion.Truncated,
		CacheHit:  res.CacheHit,
		Elapsed:   res.Elapsed,
	})
	e.logger.DebugContext(ctx, "render complete",
		"depth", req.Depth,
		"budget", req.Budget,
		"segments", res.Path.Len(),
		"cache_hit", res.CacheHit,
	)
}

// renderKey derives the cache key from every input that can influence the
// output. The grammar is keyed by its canonical form so formatting
// differences in the source text still share an entry.
func renderKey(g *lsystem.Grammar, depth, budget int, p turtle.Params) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%g|%g|%g|%g|%d|%d",
		g.String(), depth, budget,
		p.Angle, p.Step, p.AngleDelta, p.StepDelta,
		p.Roughness, p.MaxSegments,
	)
	return "v1:" + hex.EncodeToString(h.Sum(nil))
}
