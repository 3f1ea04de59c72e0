package bramble_test

import (
	"context"
	"fmt"
	"log"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/pkg/adapters/memory"
	"github.com/verdancy/bramble/pkg/preset"
	"github.com/verdancy/bramble/pkg/turtle"
)

// ExampleEngine_Expand shows the grammar stage on its own: rules in, flat
// command string out.
func ExampleEngine_Expand() {
	eng, err := bramble.New()
	if err != nil {
		log.Fatal(err)
	}

	exp, err := eng.Expand(context.Background(), bramble.ExpandRequest{
		Rules:  "A:F+A",
		Depth:  3,
		Budget: 100,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(exp.Commands)
	fmt.Println("draws:", exp.DrawCount)
	// Output:
	// F+F+F+
	// draws: 3
}

// ExampleEngine_Render runs the whole pipeline and reports the geometry
// it produced.
func ExampleEngine_Render() {
	eng, err := bramble.New()
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Render(context.Background(), bramble.RenderRequest{
		Rules:  "A:F[+F]F",
		Depth:  1,
		Budget: 100,
		Params: turtle.Params{Angle: 90, Step: 1, Roughness: 1},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Expansion.Commands)
	fmt.Println("segments:", res.Path.Len())
	// Output:
	// F[+F]F
	// segments: 3
}

// ExampleEngine_RenderPreset demonstrates rendering through a named
// preset backed by the in-memory store.
func ExampleEngine_RenderPreset() {
	store, err := memory.NewPresetStore(&preset.Preset{
		Name:   "sprig",
		Rules:  "T:FFF",
		Depth:  1,
		Budget: 64,
		Angle:  45,
		Step:   10,
	})
	if err != nil {
		log.Fatal(err)
	}

	eng, err := bramble.New(bramble.WithPresetStore(store))
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.RenderPreset(context.Background(), "sprig", map[string]any{"roughness": 1})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Preset, "segments:", res.Path.Len())
	// Output:
	// sprig segments: 3
}
