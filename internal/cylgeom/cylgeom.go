// Package cylgeom implements the circular-cylinder surface projection and
// inner-cylinder chord test shared by the ring-based detector trackers.
package cylgeom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cylinder is a right-circular cylinder whose axis is parallel to z.
type Cylinder struct {
	CenterX, CenterY float64
	Radius           float64
}

// solveQuadratic returns the real roots of a*t^2 + b*t + c = 0 in ascending
// order. ok is false when there are no real roots.
func solveQuadratic(a, b, c float64) (lo, hi float64, ok bool) {
	if a == 0 {
		if b == 0 {
			return 0, 0, false
		}
		root := -c / b
		return root, root, true
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	r1 := (-b - sq) / (2 * a)
	r2 := (-b + sq) / (2 * a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return r1, r2, true
}

// ProjectToCylinder projects pos along the unit direction dir to the
// cylinder's surface, returning the hit point and the (nearest positive)
// travel distance. It fails when dir is purely axial (|cz| == 1), since such
// a ray never crosses a cylindrical wall.
func ProjectToCylinder(pos mgl64.Vec3, dir mgl64.Vec3, cyl Cylinder) (hit mgl64.Vec3, dist float64, ok bool) {
	if math.Abs(dir.Z()) == 1.0 {
		return mgl64.Vec3{}, 0, false
	}

	xCoord := pos.X() - cyl.CenterX
	yCoord := pos.Y() - cyl.CenterY

	a := 1 - dir.Z()*dir.Z()
	b := 2 * (dir.X()*xCoord + dir.Y()*yCoord)
	c := xCoord*xCoord + yCoord*yCoord - cyl.Radius*cyl.Radius

	lo, hi, hasRoots := solveQuadratic(a, b, c)
	if !hasRoots {
		return mgl64.Vec3{}, 0, false
	}

	var t float64
	switch {
	case lo > 0:
		t = lo
	case hi > 0:
		t = hi
	default:
		return mgl64.Vec3{}, 0, false
	}

	return pos.Add(dir.Mul(t)), t, true
}

// PointInCylinder reports whether p lies strictly inside cyl (in the xy
// projection; z is ignored).
func PointInCylinder(p mgl64.Vec3, cyl Cylinder) bool {
	dx := p.X() - cyl.CenterX
	dy := p.Y() - cyl.CenterY
	return dx*dx+dy*dy < cyl.Radius*cyl.Radius
}

// HitInnerCylinder tests whether a ray known to originate outside cyl will
// enter it, given the ray is not moving purely radially outward. Returns the
// 3-D hit point reconstructed from the 2-D chord plus the axial component
// along it.
func HitInnerCylinder(pos, dir mgl64.Vec3, cyl Cylinder) (hit mgl64.Vec3, dist float64, hitOk bool) {
	xCoord := pos.X() - cyl.CenterX
	yCoord := pos.Y() - cyl.CenterY

	// Rule out rays moving away from the cylinder's axis (radial dot product
	// non-negative means the photon is moving outward or tangentially).
	radialDot := dir.X()*xCoord + dir.Y()*yCoord
	if radialDot >= 0 {
		return mgl64.Vec3{}, 0, false
	}

	if dir.Z() == 0 {
		// Purely transaxial motion: reuse the cylinder-projection quadratic
		// without the axial-degeneracy refusal (it never triggers when
		// cz == 0 since |cz| != 1 unless the cylinder is degenerate).
		return ProjectToCylinder(pos, dir, cyl)
	}

	a := dir.X()*dir.X() + dir.Y()*dir.Y()
	b := 2 * (dir.X()*xCoord + dir.Y()*yCoord)
	c := xCoord*xCoord + yCoord*yCoord - cyl.Radius*cyl.Radius

	lo, hi, hasRoots := solveQuadratic(a, b, c)
	if !hasRoots || (hi < 0) {
		return mgl64.Vec3{}, 0, false
	}

	t := lo
	if t < 0 {
		t = hi
	}
	if t < 0 {
		return mgl64.Vec3{}, 0, false
	}

	return pos.Add(dir.Mul(t)), t, true
}

// AxialRangeContains reports whether z lies within [minZ, maxZ).
func AxialRangeContains(z, minZ, maxZ float64) bool {
	return z >= minZ && z < maxZ
}
