package turtle

import "math"

// Segment is one emitted line, already mirrored into output space.
type Segment struct {
	FromX float64 `json:"from_x" msgpack:"fx"`
	FromY float64 `json:"from_y" msgpack:"fy"`
	ToX   float64 `json:"to_x" msgpack:"tx"`
	ToY   float64 `json:"to_y" msgpack:"ty"`
}

// Path is the full output of a trace.
type Path struct {
	Segments []Segment `json:"segments" msgpack:"segments"`
	// Steps is the total number of F commands walked, emitted or not.
	Steps int `json:"steps" msgpack:"steps"`
}

// Len returns the number of emitted segments.
func (p *Path) Len() int {
	return len(p.Segments)
}

// Arrays splits the path into four parallel coordinate slices, one value
// per segment, in emission order.
func (p *Path) Arrays() (fromX, fromY, toX, toY []float64) {
	n := len(p.Segments)
	fromX = make([]float64, n)
	fromY = make([]float64, n)
	toX = make([]float64, n)
	toY = make([]float64, n)
	for i, s := range p.Segments {
		fromX[i] = s.FromX
		fromY[i] = s.FromY
		toX[i] = s.ToX
		toY[i] = s.ToY
	}
	return fromX, fromY, toX, toY
}

// Bounds returns the axis-aligned bounding box of every segment endpoint.
// An empty path reports all zeros.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p.Segments) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range p.Segments {
		minX = math.Min(minX, math.Min(s.FromX, s.ToX))
		minY = math.Min(minY, math.Min(s.FromY, s.ToY))
		maxX = math.Max(maxX, math.Max(s.FromX, s.ToX))
		maxY = math.Max(maxY, math.Max(s.FromY, s.ToY))
	}
	return minX, minY, maxX, maxY
}
