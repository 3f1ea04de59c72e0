package ports

import (
	"context"

	"github.com/verdancy/bramble/pkg/preset"
)

// PresetStore resolves named render presets.
type PresetStore interface {
	// Get returns the preset registered under name.
	// Returns preset.ErrNotFound if the name is unknown.
	Get(ctx context.Context, name string) (*preset.Preset, error)

	// List returns the known preset names in sorted order.
	List(ctx context.Context) ([]string, error)
}
