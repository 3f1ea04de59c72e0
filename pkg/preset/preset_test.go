package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdancy/bramble/pkg/lsystem"
)

func valid() *Preset {
	return &Preset{
		Name:   "twig",
		Rules:  "T:F[+T][-T]F",
		Depth:  4,
		Budget: 256,
		Angle:  25,
		Step:   8,
	}
}

func TestValidateAcceptsCompletePreset(t *testing.T) {
	assert.NoError(t, valid().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Preset)
	}{
		{"empty name", func(p *Preset) { p.Name = "" }},
		{"name with slash", func(p *Preset) { p.Name = "a/b" }},
		{"name with space", func(p *Preset) { p.Name = "a b" }},
		{"empty rules", func(p *Preset) { p.Rules = "" }},
		{"unparseable rules", func(p *Preset) { p.Rules = "no colon here" }},
		{"negative depth", func(p *Preset) { p.Depth = -1 }},
		{"negative budget", func(p *Preset) { p.Budget = -1 }},
		{"negative roughness", func(p *Preset) { p.Roughness = -1 }},
		{"negative cap", func(p *Preset) { p.MaxSegments = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalid)
		})
	}
}

func TestValidateRulesErrorMentionsParseFailure(t *testing.T) {
	p := valid()
	p.Rules = ":F"
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), lsystem.ErrMalformedRule.Error())
}

func TestParamsMapping(t *testing.T) {
	p := valid()
	p.AngleDelta = 0.1
	p.StepDelta = 0.2
	p.Roughness = 3
	p.MaxSegments = 99

	tp := p.Params()
	assert.Equal(t, 25.0, tp.Angle)
	assert.Equal(t, 8.0, tp.Step)
	assert.Equal(t, 0.1, tp.AngleDelta)
	assert.Equal(t, 0.2, tp.StepDelta)
	assert.Equal(t, 3, tp.Roughness)
	assert.Equal(t, 99, tp.MaxSegments)
}

func TestMergeOverridesFields(t *testing.T) {
	base := valid()

	merged, err := Merge(base, map[string]any{
		"depth":  6,
		"angle":  30.5,
		"budget": float64(512), // JSON numbers arrive as float64
	})
	require.NoError(t, err)

	assert.Equal(t, 6, merged.Depth)
	assert.Equal(t, 30.5, merged.Angle)
	assert.Equal(t, 512, merged.Budget)
	// Base untouched.
	assert.Equal(t, 4, base.Depth)
	assert.Equal(t, 25.0, base.Angle)
}

func TestMergeNilAndEmptyOverrides(t *testing.T) {
	base := valid()

	for _, overrides := range []map[string]any{nil, {}} {
		merged, err := Merge(base, overrides)
		require.NoError(t, err)
		assert.Equal(t, base, merged)
		assert.NotSame(t, base, merged)
	}
}

func TestMergeRejectsUnknownKey(t *testing.T) {
	_, err := Merge(valid(), map[string]any{"wobble": 1})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMergeValidatesResult(t *testing.T) {
	_, err := Merge(valid(), map[string]any{"depth": -2})
	assert.ErrorIs(t, err, ErrInvalid)
}
