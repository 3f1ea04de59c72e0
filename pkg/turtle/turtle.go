package turtle

import (
	"errors"
	"math"
)

// initialHeading points the turtle straight up before the first command.
const initialHeading = 90.0

// ErrStackUnderflow is returned when a ] command arrives with no matching [.
var ErrStackUnderflow = errors.New("pose stack underflow")

// Params controls the interpretation of a command string.
type Params struct {
	// Angle is the initial turn increment in degrees applied by + and -.
	Angle float64 `json:"angle" msgpack:"angle"`
	// Step is the initial distance covered by one F command.
	Step float64 `json:"step" msgpack:"step"`
	// AngleDelta is the relative factor by which ) grows and ( shrinks
	// the turn increment: a value of 0.1 means ±10% per command.
	AngleDelta float64 `json:"angle_delta" msgpack:"angle_delta"`
	// StepDelta is the relative factor by which > grows and < shrinks
	// the step length.
	StepDelta float64 `json:"step_delta" msgpack:"step_delta"`
	// Roughness is the emission stride: only every Roughness-th advance
	// emits a segment. Values below 1 behave as 1.
	Roughness int `json:"roughness" msgpack:"roughness"`
	// MaxSegments caps the emitted segment count. Zero or negative means
	// no cap beyond what the command string produces.
	MaxSegments int `json:"max_segments" msgpack:"max_segments"`
}

// pose is the complete drawing state. The anchor fields track the last
// emitted point so that strided emission spans skipped advances; save and
// restore carry the anchor along with the rest of the pose, which keeps
// branches from bleeding their anchor into the trunk.
type pose struct {
	heading float64
	angle   float64
	step    float64
	x, y    float64

	anchorX, anchorY float64
}

// Trace walks commands and returns the emitted path.
//
// The number of emitted segments is exactly min(floor(draws/R), cap) where
// draws is the number of F commands, R the roughness stride and cap the
// MaxSegments bound (when positive). When the cap is hit the walk still
// continues so that stack errors are detected and Steps reflects the whole
// string; only emission stops.
//
// Trace fails only on a ] with an empty stack. An unbalanced [ is not an
// error; the dangling saved poses are simply discarded.
func Trace(commands string, p Params) (*Path, error) {
	stride := p.Roughness
	if stride < 1 {
		stride = 1
	}

	limit := emitBound(commands, stride, p.MaxSegments)
	segments := make([]Segment, 0, limit)

	cur := pose{heading: initialHeading, angle: p.Angle, step: p.Step}
	var stack []pose
	advances := 0

	for _, c := range commands {
		switch c {
		case '+':
			cur.heading += cur.angle
		case '-':
			cur.heading -= cur.angle
		case '>':
			cur.step *= 1 + p.StepDelta
		case '<':
			cur.step *= 1 - p.StepDelta
		case ')':
			cur.angle *= 1 + p.AngleDelta
		case '(':
			cur.angle *= 1 - p.AngleDelta
		case '[':
			stack = append(stack, cur)
		case ']':
			if len(stack) == 0 {
				return nil, ErrStackUnderflow
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case '!':
			cur.angle = -cur.angle
		case '|':
			cur.heading += 180
		case 'F':
			rad := cur.heading * math.Pi / 180
			cur.x += math.Cos(rad) * cur.step
			cur.y += math.Sin(rad) * cur.step
			advances++
			if advances%stride == 0 && len(segments) < limit {
				segments = append(segments, Segment{
					FromX: -cur.anchorX,
					FromY: cur.anchorY,
					ToX:   -cur.x,
					ToY:   cur.y,
				})
				cur.anchorX, cur.anchorY = cur.x, cur.y
			}
		default:
			// Not a command; expansion already filtered these, but be
			// lenient with hand-written strings.
		}
	}

	return &Path{Segments: segments, Steps: advances}, nil
}

// emitBound computes the exact emission capacity so the segment slice never
// reallocates: floor(draws/stride), clamped by the max cap when set.
func emitBound(commands string, stride, max int) int {
	draws := 0
	for _, c := range commands {
		if c == 'F' {
			draws++
		}
	}
	n := draws / stride
	if max > 0 && max < n {
		n = max
	}
	return n
}
