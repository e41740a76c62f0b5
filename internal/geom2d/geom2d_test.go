package geom2d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirCosinesIdenticalPoints(t *testing.T) {
	cx, cy := DirCosines(mgl64.Vec2{1, 1}, mgl64.Vec2{1, 1})
	assert.Equal(t, 1.0, cx)
	assert.Equal(t, 0.0, cy)
}

func TestDirCosinesUnit(t *testing.T) {
	cx, cy := DirCosines(mgl64.Vec2{0, 0}, mgl64.Vec2{3, 4})
	assert.InDelta(t, 0.6, cx, 1e-12)
	assert.InDelta(t, 0.8, cy, 1e-12)
}

func TestDirCosCompareAntisymmetric(t *testing.T) {
	pairs := [][4]float64{
		{1, 0, 0, 1},
		{0.6, 0.8, -0.6, 0.8},
		{-1, 0, 0, -1},
	}
	for _, p := range pairs {
		fwd := DirCosCompare(p[0], p[1], p[2], p[3])
		rev := DirCosCompare(p[2], p[3], p[0], p[1])
		if fwd == 0 {
			assert.Equal(t, 0, rev)
		} else {
			assert.Equal(t, -fwd, rev)
		}
	}
}

func TestDirCosCompareHalfPlaneTransitivity(t *testing.T) {
	// Three direction cosines strictly within the upper half-plane,
	// increasing in angle.
	angles := []float64{0.1, 0.8, 1.5}
	lines := make([][2]float64, len(angles))
	for i, a := range angles {
		lines[i] = [2]float64{math.Cos(a), math.Sin(a)}
	}
	ab := DirCosCompare(lines[0][0], lines[0][1], lines[1][0], lines[1][1])
	bc := DirCosCompare(lines[1][0], lines[1][1], lines[2][0], lines[2][1])
	ac := DirCosCompare(lines[0][0], lines[0][1], lines[2][0], lines[2][1])
	require.Equal(t, -1, ab)
	require.Equal(t, -1, bc)
	require.Equal(t, -1, ac)
}

func TestDirCosComparePiSeparation(t *testing.T) {
	assert.Equal(t, 1, DirCosCompare(1, 0, -1, 0))
}

func TestSegmentsIntersectCrossing(t *testing.T) {
	r := SegmentsIntersect(mgl64.Vec2{0, 0}, mgl64.Vec2{2, 2}, mgl64.Vec2{0, 2}, mgl64.Vec2{2, 0})
	assert.Equal(t, Inside, r)
}

func TestSegmentsIntersectDisjoint(t *testing.T) {
	r := SegmentsIntersect(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{0, 5}, mgl64.Vec2{1, 5})
	assert.Equal(t, Outside, r)
}

func TestSegmentsIntersectEndpointTouch(t *testing.T) {
	r := SegmentsIntersect(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, mgl64.Vec2{1, 1}, mgl64.Vec2{2, 0})
	assert.Equal(t, OnBoundary, r)
}

func TestSegmentsIntersectCollinearOverlap(t *testing.T) {
	r := SegmentsIntersect(mgl64.Vec2{0, 0}, mgl64.Vec2{4, 0}, mgl64.Vec2{2, 0}, mgl64.Vec2{6, 0})
	assert.Equal(t, Inside, r)
}

func unitSquare(minX, minY, maxX, maxY float64) Rect {
	return Rect{
		C1: mgl64.Vec2{minX, minY},
		C2: mgl64.Vec2{maxX, minY},
		C3: mgl64.Vec2{maxX, maxY},
		C4: mgl64.Vec2{minX, maxY},
	}
}

func TestPointVsRect(t *testing.T) {
	r := unitSquare(0, 0, 2, 2)
	assert.Equal(t, Inside, PointVsRect(mgl64.Vec2{1, 1}, r))
	assert.Equal(t, OnBoundary, PointVsRect(mgl64.Vec2{0, 1}, r))
	assert.Equal(t, Outside, PointVsRect(mgl64.Vec2{3, 3}, r))
}

func TestRectsIntersectSelf(t *testing.T) {
	r := unitSquare(0, 0, 2, 2)
	assert.Equal(t, Inside, RectsIntersect(r, r))
}

func TestRectsIntersectSymmetric(t *testing.T) {
	r1 := unitSquare(0, 0, 2, 2)
	r2 := unitSquare(1, 1, 3, 3)
	assert.Equal(t, RectsIntersect(r1, r2), RectsIntersect(r2, r1))
	assert.Equal(t, Inside, RectsIntersect(r1, r2))
}

func TestRectsIntersectDisjoint(t *testing.T) {
	r1 := unitSquare(0, 0, 1, 1)
	r2 := unitSquare(5, 5, 6, 6)
	assert.Equal(t, Outside, RectsIntersect(r1, r2))
}

func TestRectsIntersectTouchingEdge(t *testing.T) {
	r1 := unitSquare(0, 0, 1, 1)
	r2 := unitSquare(1, 0, 2, 1)
	assert.Equal(t, OnBoundary, RectsIntersect(r1, r2))
}
