package bramble

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExpand    EventType = "expand"
	EventRender    EventType = "render"
	EventCacheHit  EventType = "cache_hit"
	EventCacheMiss EventType = "cache_miss"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ExpandEvent describes a completed grammar expansion.
type ExpandEvent struct {
	EventBase
	Depth     int           `json:"depth"`
	Budget    int           `json:"budget"`
	DrawCount int           `json:"draw_count"`
	Dropped   int           `json:"dropped,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RenderEvent describes a completed render, cached or computed.
type RenderEvent struct {
	EventBase
	Preset    string        `json:"preset,omitempty"`
	Depth     int           `json:"depth"`
	Budget    int           `json:"budget"`
	DrawCount int           `json:"draw_count"`
	Segments  int           `json:"segments"`
	Steps     int           `json:"steps"`
	Truncated bool          `json:"truncated,omitempty"`
	CacheHit  bool          `json:"cache_hit,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// CacheEvent describes a cache probe.
type CacheEvent struct {
	EventBase
	Key string `json:"key"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil; hooks run synchronously on the calling goroutine.
type LifecycleHooks struct {
	OnExpand    func(context.Context, *ExpandEvent)
	OnRender    func(context.Context, *RenderEvent)
	OnCacheHit  func(context.Context, *CacheEvent)
	OnCacheMiss func(context.Context, *CacheEvent)
}

func (h LifecycleHooks) fireExpand(ctx context.Context, ev *ExpandEvent) {
	if h.OnExpand != nil {
		ev.EventBase = EventBase{Timestamp: time.Now(), Type: EventExpand}
		h.OnExpand(ctx, ev)
	}
}

func (h LifecycleHooks) fireRender(ctx context.Context, ev *RenderEvent) {
	if h.OnRender != nil {
		ev.EventBase = EventBase{Timestamp: time.Now(), Type: EventRender}
		h.OnRender(ctx, ev)
	}
}

func (h LifecycleHooks) fireCacheHit(ctx context.Context, key string) {
	if h.OnCacheHit != nil {
		h.OnCacheHit(ctx, &CacheEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventCacheHit},
			Key:       key,
		})
	}
}

func (h LifecycleHooks) fireCacheMiss(ctx context.Context, key string) {
	if h.OnCacheMiss != nil {
		h.OnCacheMiss(ctx, &CacheEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventCacheMiss},
			Key:       key,
		})
	}
}
