// Package svg serializes traced paths as standalone SVG documents.
package svg

import (
	"fmt"
	"math"
	"strings"

	"github.com/verdancy/bramble/pkg/turtle"
)

// Options controls the generated document.
type Options struct {
	// Width and Height are the viewport size in pixels.
	Width  int
	Height int
	// Margin is the padding kept around the drawing, in pixels.
	Margin float64
	// Stroke is the line color.
	Stroke string
	// StrokeWidth is the line width in pixels.
	StrokeWidth float64
	// Background fills the canvas when non-empty; empty stays transparent.
	Background string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Stroke == "" {
		o.Stroke = "#2f6f4f"
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1.5
	}
	return o
}

// Generate produces an SVG document plotting every segment of the path.
// The drawing is scaled uniformly to fit the viewport and flipped
// vertically, since the path's y axis grows upward while SVG's grows
// downward. An empty path yields a valid document with no geometry.
func Generate(path *turtle.Path, opts Options) string {
	opts = opts.withDefaults()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	sb.WriteString("\n")

	if opts.Background != "" {
		fmt.Fprintf(&sb, `  <rect width="100%%" height="100%%" fill="%s"/>`, opts.Background)
		sb.WriteString("\n")
	}

	if path.Len() > 0 {
		minX, minY, maxX, maxY := path.Bounds()
		scale, offX, offY := fitTransform(minX, minY, maxX, maxY, opts)

		fmt.Fprintf(&sb, `  <g stroke="%s" stroke-width="%g" stroke-linecap="round" fill="none">`,
			opts.Stroke, opts.StrokeWidth)
		sb.WriteString("\n")
		for _, s := range path.Segments {
			x1 := (s.FromX-minX)*scale + offX
			y1 := float64(opts.Height) - ((s.FromY-minY)*scale + offY)
			x2 := (s.ToX-minX)*scale + offX
			y2 := float64(opts.Height) - ((s.ToY-minY)*scale + offY)
			fmt.Fprintf(&sb, `    <line x1="%.3f" y1="%.3f" x2="%.3f" y2="%.3f"/>`, x1, y1, x2, y2)
			sb.WriteString("\n")
		}
		sb.WriteString("  </g>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// fitTransform computes the uniform scale and the offsets that center the
// bounding box inside the viewport minus margins. A degenerate box (a
// single point) gets scale 1 so the point lands mid-canvas.
func fitTransform(minX, minY, maxX, maxY float64, opts Options) (scale, offX, offY float64) {
	spanX := maxX - minX
	spanY := maxY - minY
	availW := float64(opts.Width) - 2*opts.Margin
	availH := float64(opts.Height) - 2*opts.Margin

	scale = 1
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(availW/spanX, availH/spanY)
	case spanX > 0:
		scale = availW / spanX
	case spanY > 0:
		scale = availH / spanY
	}

	offX = opts.Margin + (availW-spanX*scale)/2
	offY = opts.Margin + (availH-spanY*scale)/2
	return scale, offX, offY
}
