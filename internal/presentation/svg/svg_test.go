package svg

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdancy/bramble/pkg/turtle"
)

func segment(fx, fy, tx, ty float64) turtle.Segment {
	return turtle.Segment{FromX: fx, FromY: fy, ToX: tx, ToY: ty}
}

// parseLines extracts the endpoint coordinates of every <line> element.
func parseLines(t *testing.T, doc string) [][4]float64 {
	t.Helper()
	var out [][4]float64
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "<line") {
			continue
		}
		var x1, y1, x2, y2 float64
		_, err := fmt.Sscanf(line, `<line x1="%f" y1="%f" x2="%f" y2="%f"/>`, &x1, &y1, &x2, &y2)
		require.NoError(t, err, "unparseable line element: %s", line)
		out = append(out, [4]float64{x1, y1, x2, y2})
	}
	return out
}

func TestGenerateEmptyPath(t *testing.T) {
	out := Generate(&turtle.Path{}, Options{})

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.NotContains(t, out, "<line")
}

func TestGenerateOneLinePerSegment(t *testing.T) {
	path := &turtle.Path{Segments: []turtle.Segment{
		segment(0, 0, 0, 1),
		segment(0, 1, 1, 1),
		segment(0, 1, 0, 2),
	}}

	out := Generate(path, Options{})
	assert.Len(t, parseLines(t, out), 3)
	assert.Contains(t, out, `stroke="#2f6f4f"`)
}

func TestGenerateBackground(t *testing.T) {
	out := Generate(&turtle.Path{}, Options{Background: "#101010"})
	assert.Contains(t, out, `fill="#101010"`)

	out = Generate(&turtle.Path{}, Options{})
	assert.NotContains(t, out, "<rect")
}

func TestGenerateFitsViewport(t *testing.T) {
	// A wide drawing must be scaled into the viewport with its margin.
	path := &turtle.Path{Segments: []turtle.Segment{
		segment(-500, 0, 500, 10),
	}}

	out := Generate(path, Options{Width: 100, Height: 100, Margin: 10})

	for _, coords := range parseLines(t, out) {
		for _, v := range coords {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
}

func TestGenerateFlipsY(t *testing.T) {
	// The higher path point must land nearer the top of the canvas
	// (smaller SVG y).
	path := &turtle.Path{Segments: []turtle.Segment{
		segment(0, 0, 0, 10),
	}}

	out := Generate(path, Options{Width: 100, Height: 100, Margin: 0})
	lines := parseLines(t, out)
	require.Len(t, lines, 1)
	assert.Less(t, lines[0][3], lines[0][1], "the segment's upper end should have the smaller svg y")
}

func TestGenerateSinglePointPath(t *testing.T) {
	// Zero-length segments still produce a valid document.
	path := &turtle.Path{Segments: []turtle.Segment{
		segment(3, 3, 3, 3),
	}}

	out := Generate(path, Options{Width: 100, Height: 100})
	lines := parseLines(t, out)
	require.Len(t, lines, 1)
	assert.InDelta(t, 50, lines[0][0], 0.5)
	assert.InDelta(t, 50, lines[0][1], 0.5)
}
