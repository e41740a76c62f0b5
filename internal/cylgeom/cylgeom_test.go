package cylgeom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestProjectToCylinderAxialFails(t *testing.T) {
	cyl := Cylinder{Radius: 10}
	_, _, ok := ProjectToCylinder(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1}, cyl)
	assert.False(t, ok)
	_, _, ok = ProjectToCylinder(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}, cyl)
	assert.False(t, ok)
}

func TestProjectToCylinderNormalIncidence(t *testing.T) {
	cyl := Cylinder{Radius: 10}
	hit, dist, ok := ProjectToCylinder(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, cyl)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, dist, 1e-9)
	assert.InDelta(t, 10.0, hit.X(), 1e-9)
	assert.InDelta(t, 0.0, hit.Y(), 1e-9)
}

func TestProjectThenPointInCylinderIsBoundary(t *testing.T) {
	cyl := Cylinder{Radius: 7}
	dir := mgl64.Vec3{0.6, 0.8, 0}
	hit, _, ok := ProjectToCylinder(mgl64.Vec3{0, 0, 0}, dir, cyl)
	if !ok {
		t.Fatal("expected hit")
	}
	dx := hit.X() - cyl.CenterX
	dy := hit.Y() - cyl.CenterY
	r := math.Hypot(dx, dy)
	assert.InDelta(t, cyl.Radius, r, 1e-9)
	assert.False(t, PointInCylinder(hit, cyl))
}

func TestPointInCylinderStrict(t *testing.T) {
	cyl := Cylinder{Radius: 5}
	assert.True(t, PointInCylinder(mgl64.Vec3{0, 0, 0}, cyl))
	assert.False(t, PointInCylinder(mgl64.Vec3{5, 0, 0}, cyl))
	assert.False(t, PointInCylinder(mgl64.Vec3{6, 0, 0}, cyl))
}

func TestHitInnerCylinderOutwardRayMisses(t *testing.T) {
	inner := Cylinder{Radius: 5}
	pos := mgl64.Vec3{10, 0, 0}
	dir := mgl64.Vec3{1, 0, 0} // moving away
	_, _, ok := HitInnerCylinder(pos, dir, inner)
	assert.False(t, ok)
}

func TestHitInnerCylinderInwardRayHits(t *testing.T) {
	inner := Cylinder{Radius: 5}
	pos := mgl64.Vec3{10, 0, 0}
	dir := mgl64.Vec3{-1, 0, 0}
	hit, dist, ok := HitInnerCylinder(pos, dir, inner)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, dist, 1e-9)
	assert.InDelta(t, 5.0, hit.X(), 1e-9)
}

func TestHitInnerCylinderPureRadialMotion(t *testing.T) {
	inner := Cylinder{Radius: 5}
	pos := mgl64.Vec3{10, 0, 3}
	dir := mgl64.Vec3{-1, 0, 0}
	hit, dist, ok := HitInnerCylinder(pos, dir, inner)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, dist, 1e-9)
	assert.InDelta(t, 3.0, hit.Z(), 1e-9)
}

func TestAxialRangeContains(t *testing.T) {
	assert.True(t, AxialRangeContains(0, 0, 1))
	assert.False(t, AxialRangeContains(1, 0, 1))
	assert.True(t, AxialRangeContains(0.999, 0, 1))
}
