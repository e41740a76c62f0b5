// Package geom2d implements the 2-D computational-geometry primitives the
// detector core leans on: direction cosines, normal-form lines, segment and
// rectangle intersection, and angular ordering of direction cosines.
package geom2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/detconst"
)

// Relation describes the outcome of an intersection test.
type Relation int

const (
	Outside Relation = iota
	OnBoundary
	Inside
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < detconst.GeomEps
}

func approxZero(v float64) float64 {
	if math.Abs(v) < detconst.GeomEps {
		return 0.0
	}
	return v
}

// Line is the signed normal-form equation cos*x + sin*y + dist = 0.
type Line struct {
	Cos, Sin, Dist float64
}

// Rect is a (possibly rotated) rectangle given by its four corners in order
// around the boundary; corner_1/corner_3 and corner_2/corner_4 are the two
// diagonal pairs.
type Rect struct {
	C1, C2, C3, C4 mgl64.Vec2
}

// DirCosines returns the direction cosines of the line from p1 to p2. For
// coincident points it returns (1,0) by convention.
func DirCosines(p1, p2 mgl64.Vec2) (cx, cy float64) {
	offset := p2.Sub(p1)
	length := offset.Len()
	if length == 0.0 {
		return 1.0, 0.0
	}
	return offset.X() / length, offset.Y() / length
}

// DirCosCompare performs a counterclockwise angular comparison of two lines
// given as direction cosines. Lines separated by exactly pi compare as +1.
func DirCosCompare(c1x, c1y, c2x, c2y float64) int {
	if c1x == c2x && c1y == c2y {
		return 0
	}
	if c1x == -c2x && c1y == -c2y {
		// Lines separated by pi: +1 by convention.
		return 1
	}

	sameYSide := math.Signbit(c1y) == math.Signbit(c2y)
	if sameYSide {
		if c1y >= 0 {
			if c1x > c2x {
				return -1
			}
			return 1
		}
		if c1x > c2x {
			return 1
		}
		return -1
	}

	sameXSide := math.Signbit(c1x) == math.Signbit(c2x)
	if sameXSide {
		if c1x >= 0 {
			if c1y < c2y {
				return -1
			}
			return 1
		}
		if c1y < c2y {
			return 1
		}
		return -1
	}

	if c1x == -c2x {
		// Lines separated by pi: arbitrary by convention.
		return 1
	}

	theta1 := math.Acos(c1x)
	if c1y < 0 {
		theta1 = 2*math.Pi - theta1
	}
	theta2 := math.Acos(c2x)
	if c2y < 0 {
		theta2 = 2*math.Pi - theta2
	}

	if theta1 < theta2 {
		if theta2 < theta1+math.Pi {
			return -1
		}
		return 1
	}
	if theta1 < theta2+math.Pi {
		return 1
	}
	return -1
}

// NormalLine computes the (modified) normal-form coefficients of the line
// through two distinct points, with sign chosen so that Dist <= 0 when the
// origin lies on the line's positive side.
func NormalLine(p1, p2 mgl64.Vec2) Line {
	a := p2.Y() - p1.Y()
	b := p1.X() - p2.X()
	c := p2.X()*p1.Y() - p1.X()*p2.Y()

	length := math.Hypot(a, b)
	if c == 0.0 {
		length = math.Copysign(length, b)
	} else {
		length = -math.Copysign(length, c)
	}

	return Line{Cos: a / length, Sin: b / length, Dist: c / length}
}

// SegmentsIntersect classifies the intersection of segments [a1,a2] and
// [b1,b2]. Endpoints are assumed distinct within each segment.
func SegmentsIntersect(a1, a2, b1, b2 mgl64.Vec2) Relation {
	lineA := NormalLine(a1, a2)
	lineB := NormalLine(b1, b2)

	if approxEqual(lineA.Cos, lineB.Cos) && approxEqual(lineA.Sin, lineB.Sin) {
		if !approxEqual(lineA.Dist, lineB.Dist) {
			return Outside
		}
		// Collinear: reduce to a 1-D overlap test on the more-varying axis.
		var aMin, aMax, bMin, bMax float64
		if math.Abs(lineA.Cos) < math.Abs(lineA.Sin) {
			aMin, aMax = minMax(a1.X(), a2.X())
			bMin, bMax = minMax(b1.X(), b2.X())
		} else {
			aMin, aMax = minMax(a1.Y(), a2.Y())
			bMin, bMax = minMax(b1.Y(), b2.Y())
		}
		if bMin > aMax || aMin > bMax {
			return Outside
		}
		if approxEqual(bMin, aMax) || approxEqual(aMin, bMax) {
			return OnBoundary
		}
		return Inside
	}

	p1d := approxZero(lineB.Cos*a1.X() + lineB.Sin*a1.Y() + lineB.Dist)
	p2d := approxZero(lineB.Cos*a2.X() + lineB.Sin*a2.Y() + lineB.Dist)
	q1d := approxZero(lineA.Cos*b1.X() + lineA.Sin*b1.Y() + lineA.Dist)
	q2d := approxZero(lineA.Cos*b2.X() + lineA.Sin*b2.Y() + lineA.Dist)

	signQ := q1d * q2d
	signP := p1d * p2d

	switch {
	case signQ > 0:
		return Outside
	case signP > 0:
		return Outside
	case signQ < 0 && signP < 0:
		return Inside
	default:
		return OnBoundary
	}
}

func minMax(a, b float64) (lo, hi float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// PointVsParallelLines compares a point against two (assumed parallel)
// lines, returning Inside when the point lies strictly between them.
func PointVsParallelLines(p mgl64.Vec2, l1, l2 Line) Relation {
	d1 := approxZero(l1.Cos*p.X() + l1.Sin*p.Y() + l1.Dist)
	d2 := approxZero(l2.Cos*p.X() + l2.Sin*p.Y() + l2.Dist)
	prod := d1 * d2

	if math.Abs(l1.Cos) > math.Abs(l1.Sin) {
		if math.Signbit(l1.Cos) != math.Signbit(l2.Cos) {
			prod = -prod
		}
	} else {
		if math.Signbit(l1.Sin) != math.Signbit(l2.Sin) {
			prod = -prod
		}
	}

	switch {
	case prod > 0:
		return Outside
	case prod < 0:
		return Inside
	default:
		return OnBoundary
	}
}

// PointVsRect classifies a point's position relative to a rectangle by
// combining two PointVsParallelLines tests across its two pairs of opposite
// sides.
func PointVsRect(p mgl64.Vec2, r Rect) Relation {
	line1 := NormalLine(r.C1, r.C2)
	line2 := NormalLine(r.C3, r.C4)
	res1 := PointVsParallelLines(p, line1, line2)
	if res1 == Outside {
		return Outside
	}

	line3 := NormalLine(r.C1, r.C4)
	line4 := NormalLine(r.C2, r.C3)
	res2 := PointVsParallelLines(p, line3, line4)
	if res2 == Outside {
		return Outside
	}

	if res1 == Inside && res2 == Inside {
		return Inside
	}
	return OnBoundary
}

// RectsIntersect classifies the intersection of two rectangles: first their
// diagonals, then (if none cross) whether any corner of either lies inside
// the other.
func RectsIntersect(r1, r2 Rect) Relation {
	result := SegmentsIntersect(r1.C1, r1.C3, r2.C1, r2.C3)
	if result != Inside {
		result = SegmentsIntersect(r1.C1, r1.C3, r2.C2, r2.C4)
	}
	if result != Inside {
		result = SegmentsIntersect(r1.C2, r1.C4, r2.C1, r2.C3)
	}
	if result != Inside {
		result = SegmentsIntersect(r1.C2, r1.C4, r2.C2, r2.C4)
	}
	if result == Inside {
		return Inside
	}

	onBoundary := false
	check := func(p mgl64.Vec2, rect Rect) bool {
		res := PointVsRect(p, rect)
		onBoundary = onBoundary || res == OnBoundary
		return res == Inside
	}

	switch {
	case check(r1.C1, r2), check(r1.C2, r2), check(r1.C3, r2), check(r1.C4, r2),
		check(r2.C1, r1), check(r2.C2, r1), check(r2.C3, r1), check(r2.C4, r1):
		return Inside
	case onBoundary:
		return OnBoundary
	default:
		return Outside
	}
}
