/*
Package bramble is a deterministic L-system engine: it parses production
grammars, expands them under a draw budget and interprets the result as
turtle graphics, yielding 2D line segments ready for plotting, SVG export
or streaming to a rendering host.

# Concept

Bramble treats generative line art as a pipeline of three pure stages:
parse (grammar text to rule set), expand (rule set to a flat command
string, bounded by depth and an exact draw budget) and trace (command
string to line segments). The same inputs always produce the same
segments, which makes results safe to cache and trivially testable. The
engine wires the stages together and adds the operational shell: preset
stores, render caches, lifecycle hooks and structured logging.

# Key Features

  - Deterministic Execution: identical grammar and parameters always
    reproduce the same geometry, bit for bit.
  - Budgeted Expansion: output size is bounded by the draw budget, not by
    the grammar's growth rate, so hostile or runaway rules stay cheap.
  - Hexagonal Architecture: core logic is decoupled from adapters
    (caches, preset stores, HTTP, MCP).
  - Pluggable Caching: rendered paths can be cached in memory, Redis or
    BadgerDB, keyed by a content hash of every input.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/verdancy/bramble"
		"github.com/verdancy/bramble/pkg/turtle"
	)

	func main() {
		eng, err := bramble.New()
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Render(context.Background(), bramble.RenderRequest{
			Rules:  "P:F[+P][-P]FP",
			Depth:  6,
			Budget: 1024,
			Params: turtle.Params{Angle: 25, Step: 8, Roughness: 1},
		})
		if err != nil {
			log.Fatal(err)
		}

		for _, seg := range res.Path.Segments {
			fmt.Printf("(%.2f, %.2f) -> (%.2f, %.2f)\n",
				seg.FromX, seg.FromY, seg.ToX, seg.ToY)
		}
	}
*/
package bramble
