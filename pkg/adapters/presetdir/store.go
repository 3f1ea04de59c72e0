// Package presetdir implements a preset store over a directory of YAML
// files, one preset per file.
//
// Files are loaded eagerly so that a broken preset fails at startup rather
// than on first use. The file name (without extension) is used as the
// preset name when the document does not set one.
package presetdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/verdancy/bramble/pkg/ports"
	"github.com/verdancy/bramble/pkg/preset"
)

// Store implements ports.PresetStore over a directory of YAML files.
// Safe for concurrent use; Reload swaps the whole set atomically.
type Store struct {
	dir string

	mu      sync.RWMutex
	presets map[string]*preset.Preset
}

var _ ports.PresetStore = (*Store)(nil)

// New creates a store reading *.yaml and *.yml files from dir.
func New(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-scans the directory. On error the previous set is kept.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read preset directory: %w", err)
	}

	loaded := make(map[string]*preset.Preset)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read preset %s: %w", path, err)
		}

		var p preset.Preset
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse preset %s: %w", path, err)
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(entry.Name(), ext)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("preset %s: %w", path, err)
		}
		if _, exists := loaded[p.Name]; exists {
			return fmt.Errorf("duplicate preset name %q in %s", p.Name, path)
		}
		loaded[p.Name] = &p
	}

	s.mu.Lock()
	s.presets = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the named preset.
func (s *Store) Get(ctx context.Context, name string) (*preset.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return nil, preset.ErrNotFound
	}
	return p.Clone(), nil
}

// List returns the preset names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
