// Package preset defines named, reusable render configurations: a grammar
// together with the expansion and turtle parameters that make it look right.
package preset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/verdancy/bramble/pkg/lsystem"
	"github.com/verdancy/bramble/pkg/turtle"
)

// ErrNotFound is returned when a preset name is not known to a store.
var ErrNotFound = errors.New("preset not found")

// ErrInvalid is returned when a preset fails validation.
var ErrInvalid = errors.New("invalid preset")

// Preset bundles a grammar with the parameters of a complete render.
// The zero values of the optional fields are inert: no angle or step
// scaling, stride 1, no segment cap.
type Preset struct {
	Name        string  `yaml:"name" json:"name" mapstructure:"name"`
	Title       string  `yaml:"title,omitempty" json:"title,omitempty" mapstructure:"title"`
	Rules       string  `yaml:"rules" json:"rules" mapstructure:"rules"`
	Depth       int     `yaml:"depth" json:"depth" mapstructure:"depth"`
	Budget      int     `yaml:"budget" json:"budget" mapstructure:"budget"`
	Angle       float64 `yaml:"angle" json:"angle" mapstructure:"angle"`
	Step        float64 `yaml:"step" json:"step" mapstructure:"step"`
	AngleDelta  float64 `yaml:"angle_delta,omitempty" json:"angle_delta,omitempty" mapstructure:"angle_delta"`
	StepDelta   float64 `yaml:"step_delta,omitempty" json:"step_delta,omitempty" mapstructure:"step_delta"`
	Roughness   int     `yaml:"roughness,omitempty" json:"roughness,omitempty" mapstructure:"roughness"`
	MaxSegments int     `yaml:"max_segments,omitempty" json:"max_segments,omitempty" mapstructure:"max_segments"`
	Notes       string  `yaml:"notes,omitempty" json:"notes,omitempty" mapstructure:"notes"`
}

// Validate checks that the preset is complete and renderable.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.ContainsAny(p.Name, "/\\ \t\n") {
		return fmt.Errorf("%w: name %q must not contain slashes or whitespace", ErrInvalid, p.Name)
	}
	if p.Rules == "" {
		return fmt.Errorf("%w: rules are required", ErrInvalid)
	}
	if _, err := lsystem.Parse(p.Rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if p.Depth < 0 {
		return fmt.Errorf("%w: depth must not be negative", ErrInvalid)
	}
	if p.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalid)
	}
	if p.Roughness < 0 {
		return fmt.Errorf("%w: roughness must not be negative", ErrInvalid)
	}
	if p.MaxSegments < 0 {
		return fmt.Errorf("%w: max_segments must not be negative", ErrInvalid)
	}
	return nil
}

// Params maps the preset's turtle fields onto interpreter parameters.
func (p *Preset) Params() turtle.Params {
	return turtle.Params{
		Angle:       p.Angle,
		Step:        p.Step,
		AngleDelta:  p.AngleDelta,
		StepDelta:   p.StepDelta,
		Roughness:   p.Roughness,
		MaxSegments: p.MaxSegments,
	}
}

// Clone returns a copy that can be mutated without touching the original.
func (p *Preset) Clone() *Preset {
	c := *p
	return &c
}

// Merge overlays the given field overrides on a copy of base and validates
// the result. Override keys follow the mapstructure tags ("angle_delta",
// "max_segments", ...); an unknown key is an error rather than a silent
// no-op. Numeric values are decoded weakly, so JSON's float64 fits the int
// fields.
func Merge(base *Preset, overrides map[string]any) (*Preset, error) {
	out := base.Clone()
	if len(overrides) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(overrides); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
