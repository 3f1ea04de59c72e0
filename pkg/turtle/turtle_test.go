package turtle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func trace(t *testing.T, commands string, p Params) *Path {
	t.Helper()
	path, err := Trace(commands, p)
	require.NoError(t, err)
	return path
}

func assertSegment(t *testing.T, s Segment, fx, fy, tx, ty float64) {
	t.Helper()
	assert.InDelta(t, fx, s.FromX, eps)
	assert.InDelta(t, fy, s.FromY, eps)
	assert.InDelta(t, tx, s.ToX, eps)
	assert.InDelta(t, ty, s.ToY, eps)
}

func TestTraceSingleAdvance(t *testing.T) {
	path := trace(t, "F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, 1, path.Len())
	assertSegment(t, path.Segments[0], 0, 0, 0, 1)
	assert.Equal(t, 1, path.Steps)
}

func TestTraceEmptyCommands(t *testing.T) {
	path := trace(t, "", Params{Angle: 90, Step: 1, Roughness: 1})
	assert.Zero(t, path.Len())
	assert.Zero(t, path.Steps)
}

func TestTraceBranchRestoresPose(t *testing.T) {
	// One step up, a branch turning left, then the trunk continues from
	// where the branch forked.
	path := trace(t, "F[+F]F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, 3, path.Len())
	assertSegment(t, path.Segments[0], 0, 0, 0, 1)
	// The branch heads west in turtle space; mirroring flips it east.
	assertSegment(t, path.Segments[1], 0, 1, 1, 1)
	assertSegment(t, path.Segments[2], 0, 1, 0, 2)
}

func TestTraceNestedBranches(t *testing.T) {
	path := trace(t, "F[+F[-F]F]F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, 5, path.Len())
	// Trunk resumes at the first fork point regardless of nesting.
	assertSegment(t, path.Segments[4], 0, 1, 0, 2)
}

func TestTraceMirrorsOutputX(t *testing.T) {
	// Turning right from north heads east (+x); the emitted segment is
	// mirrored across the vertical axis.
	path := trace(t, "-F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, 1, path.Len())
	assertSegment(t, path.Segments[0], 0, 0, -1, 0)
}

func TestTraceTurnAround(t *testing.T) {
	path := trace(t, "F|F", Params{Angle: 30, Step: 1, Roughness: 1})

	require.Equal(t, 2, path.Len())
	assertSegment(t, path.Segments[1], 0, 1, 0, 0)
}

func TestTraceAngleMirror(t *testing.T) {
	// After ! a left turn behaves like a right turn.
	flipped := trace(t, "!+F", Params{Angle: 90, Step: 1, Roughness: 1})
	turned := trace(t, "-F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, 1, flipped.Len())
	assertSegment(t, flipped.Segments[0], turned.Segments[0].FromX, turned.Segments[0].FromY,
		turned.Segments[0].ToX, turned.Segments[0].ToY)
}

func TestTraceAngleScaling(t *testing.T) {
	// AngleDelta 1 makes ) double the turn increment and ( zero it.
	doubled := trace(t, ")+F", Params{Angle: 90, Step: 1, AngleDelta: 1, Roughness: 1})
	require.Equal(t, 1, doubled.Len())
	// 90 + 180 = 270 degrees: straight down.
	assertSegment(t, doubled.Segments[0], 0, 0, 0, -1)

	zeroed := trace(t, "(+F", Params{Angle: 90, Step: 1, AngleDelta: 1, Roughness: 1})
	require.Equal(t, 1, zeroed.Len())
	assertSegment(t, zeroed.Segments[0], 0, 0, 0, 1)
}

func TestTraceStepScaling(t *testing.T) {
	p := Params{Angle: 90, Step: 1, StepDelta: 0.5, Roughness: 1}

	longer := trace(t, ">F", p)
	assertSegment(t, longer.Segments[0], 0, 0, 0, 1.5)

	shorter := trace(t, "<F", p)
	assertSegment(t, shorter.Segments[0], 0, 0, 0, 0.5)

	compound := trace(t, ">>F", p)
	assertSegment(t, compound.Segments[0], 0, 0, 0, 2.25)
}

func TestTraceRoughnessStride(t *testing.T) {
	// Stride 2: segments span two advances each, chained end to end.
	path := trace(t, "FFFF", Params{Angle: 90, Step: 1, Roughness: 2})

	require.Equal(t, 2, path.Len())
	assertSegment(t, path.Segments[0], 0, 0, 0, 2)
	assertSegment(t, path.Segments[1], 0, 2, 0, 4)
	assert.Equal(t, 4, path.Steps)
}

func TestTraceRoughnessFloorsOddRemainder(t *testing.T) {
	path := trace(t, "FFF", Params{Angle: 90, Step: 1, Roughness: 2})

	require.Equal(t, 1, path.Len())
	assertSegment(t, path.Segments[0], 0, 0, 0, 2)
	assert.Equal(t, 3, path.Steps)
}

func TestTraceRoughnessBelowOneBehavesAsOne(t *testing.T) {
	for _, r := range []int{0, -5} {
		path := trace(t, "FF", Params{Angle: 90, Step: 1, Roughness: r})
		assert.Equal(t, 2, path.Len(), "roughness %d", r)
	}
}

func TestTraceMaxSegmentsCap(t *testing.T) {
	path := trace(t, "FFFF", Params{Angle: 90, Step: 1, Roughness: 1, MaxSegments: 2})

	require.Equal(t, 2, path.Len())
	// The walk still covers the whole string.
	assert.Equal(t, 4, path.Steps)
}

func TestTraceStackUnderflow(t *testing.T) {
	_, err := Trace("F]F", Params{Angle: 90, Step: 1, Roughness: 1})
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestTraceUnderflowDetectedPastSegmentCap(t *testing.T) {
	// The cap stops emission, not interpretation: the bad pop after the
	// cap is still an error.
	_, err := Trace("FF]", Params{Angle: 90, Step: 1, Roughness: 1, MaxSegments: 1})
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestTraceDanglingSaveIsNotAnError(t *testing.T) {
	path := trace(t, "F[[+F", Params{Angle: 90, Step: 1, Roughness: 1})
	assert.Equal(t, 2, path.Len())
}

func TestTraceIgnoresUnknownRunes(t *testing.T) {
	plain := trace(t, "FF", Params{Angle: 90, Step: 1, Roughness: 1})
	noisy := trace(t, "F z?F", Params{Angle: 90, Step: 1, Roughness: 1})

	require.Equal(t, plain.Len(), noisy.Len())
	for i := range plain.Segments {
		assertSegment(t, noisy.Segments[i], plain.Segments[i].FromX, plain.Segments[i].FromY,
			plain.Segments[i].ToX, plain.Segments[i].ToY)
	}
}

func TestPathArrays(t *testing.T) {
	path := trace(t, "F[+F]F", Params{Angle: 90, Step: 1, Roughness: 1})

	fromX, fromY, toX, toY := path.Arrays()
	require.Len(t, fromX, 3)
	require.Len(t, fromY, 3)
	require.Len(t, toX, 3)
	require.Len(t, toY, 3)
	for i, s := range path.Segments {
		assert.InDelta(t, s.FromX, fromX[i], eps)
		assert.InDelta(t, s.FromY, fromY[i], eps)
		assert.InDelta(t, s.ToX, toX[i], eps)
		assert.InDelta(t, s.ToY, toY[i], eps)
	}
}

func TestPathBounds(t *testing.T) {
	path := trace(t, "F[+F]F", Params{Angle: 90, Step: 1, Roughness: 1})

	minX, minY, maxX, maxY := path.Bounds()
	assert.InDelta(t, 0, minX, eps)
	assert.InDelta(t, 0, minY, eps)
	assert.InDelta(t, 1, maxX, eps)
	assert.InDelta(t, 2, maxY, eps)
}

func TestPathBoundsEmpty(t *testing.T) {
	path := trace(t, "", Params{})
	minX, minY, maxX, maxY := path.Bounds()
	assert.Zero(t, minX)
	assert.Zero(t, minY)
	assert.Zero(t, maxX)
	assert.Zero(t, maxY)
}
