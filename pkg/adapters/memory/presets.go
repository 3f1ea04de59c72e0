package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/verdancy/bramble/pkg/ports"
	"github.com/verdancy/bramble/pkg/preset"
)

// PresetStore implements ports.PresetStore over a map, seeded up front.
// Safe for concurrent use.
type PresetStore struct {
	presets map[string]*preset.Preset
	mu      sync.RWMutex
}

var _ ports.PresetStore = (*PresetStore)(nil)

// NewPresetStore creates a store holding the given presets, keyed by name.
// Invalid presets are rejected.
func NewPresetStore(presets ...*preset.Preset) (*PresetStore, error) {
	s := &PresetStore{presets: make(map[string]*preset.Preset, len(presets))}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		s.presets[p.Name] = p.Clone()
	}
	return s, nil
}

// Get returns a copy of the named preset.
func (s *PresetStore) Get(ctx context.Context, name string) (*preset.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return nil, preset.ErrNotFound
	}
	return p.Clone(), nil
}

// List returns the preset names in sorted order.
func (s *PresetStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Put registers or replaces a preset.
func (s *PresetStore) Put(p *preset.Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[p.Name] = p.Clone()
	return nil
}
