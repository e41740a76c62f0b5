// Package ringwalker finds a block detector photon's next event once it is
// known to be inside a ring but not inside a block: a block hit, a zone or
// ring boundary crossing, or an inner/outer cylinder exit.
package ringwalker

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/blockdb"
	"github.com/simset/detcore/internal/cylgeom"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/geom2d"
)

// Kind identifies the category of the next event the walker found.
type Kind int

const (
	KindNone Kind = iota
	KindBlockHit
	KindZoneNext
	KindZonePrev
	KindRingNext
	KindRingPrev
	KindOuterExit
	KindInnerExit
	KindAxialExit
)

// Hit is the walker's result: the nearest event along the ray and enough
// context for the caller to act on it.
type Hit struct {
	Kind     Kind
	Distance float64
	Position mgl64.Vec3
	Block    int // valid when Kind == KindBlockHit
	Zone     int // destination zone, when Kind is KindZoneNext/KindZonePrev
	Ring     int // destination ring, when Kind is KindRingNext/KindRingPrev
}

// FindNextEvent computes the nearest of: inner-cylinder hit, outer-cylinder
// hit (or ring axial exit), next/previous zone boundary, and any block in
// the current zone, given a photon at pos traveling along dir inside
// (ring,zone).
func FindNextEvent(db *blockdb.DB, pos, dir mgl64.Vec3, ring, zone int) Hit {
	shape := db.Shape().Rings[ring]
	best := Hit{Kind: KindNone, Distance: math.Inf(1)}

	consider := func(h Hit) {
		if h.Distance < best.Distance {
			best = h
		}
	}

	if dir.Z() > 0 {
		if t := (shape.MaxZ - pos.Z()) / dir.Z(); t > detconst.GeomEps {
			consider(Hit{Kind: KindRingNext, Distance: t, Position: pos.Add(dir.Mul(t)), Ring: ring + 1})
		}
	} else if dir.Z() < 0 {
		if t := (shape.MinZ - pos.Z()) / dir.Z(); t > detconst.GeomEps {
			consider(Hit{Kind: KindRingPrev, Distance: t, Position: pos.Add(dir.Mul(t)), Ring: ring - 1})
		}
	}

	outer := cylgeom.Cylinder{Radius: shape.OuterXRad}
	if hit, t, ok := cylgeom.ProjectToCylinder(pos, dir, outer); ok && t > detconst.GeomEps {
		consider(Hit{Kind: KindOuterExit, Distance: t, Position: hit})
	}

	if shape.InnerXRad > 0 {
		inner := cylgeom.Cylinder{Radius: shape.InnerXRad}
		if hit, t, ok := cylgeom.HitInnerCylinder(pos, dir, inner); ok && t > detconst.GeomEps {
			consider(Hit{Kind: KindInnerExit, Distance: t, Position: hit})
		}
	}

	numZones := db.NumZones(ring)
	if numZones > 1 {
		loCos, loSin, hiCos, hiSin := db.ZoneBounds(ring, zone)
		if t, ok := rayToOriginLine(pos, dir, loCos, loSin); ok {
			consider(Hit{Kind: KindZonePrev, Distance: t, Position: pos.Add(dir.Mul(t)), Zone: prevZone(zone, numZones)})
		}
		if t, ok := rayToOriginLine(pos, dir, hiCos, hiSin); ok {
			consider(Hit{Kind: KindZoneNext, Distance: t, Position: pos.Add(dir.Mul(t)), Zone: nextZone(zone, numZones)})
		}
	}

	for _, bi := range db.ZoneBlocks(ring, zone) {
		if h, ok := blockHit(db, ring, bi, pos, dir); ok {
			consider(h)
		}
	}

	return best
}

func nextZone(zone, n int) int { return (zone + 1) % n }
func prevZone(zone, n int) int { return (zone - 1 + n) % n }

// rayToOriginLine intersects the ray pos+t*dir (in its xy projection) with
// the line through the origin with direction cosines (bc,bs), returning the
// 3-D travel distance t directly (dir's xy components are not renormalized,
// so solving the 2-D system already yields a true 3-D path length).
func rayToOriginLine(pos, dir mgl64.Vec3, bc, bs float64) (float64, bool) {
	d := dir.Y()*bc - dir.X()*bs
	if math.Abs(d) < detconst.GeomEps {
		return 0, false
	}
	t := (pos.X()*bs - pos.Y()*bc) / d
	if t <= detconst.GeomEps {
		return 0, false
	}
	return t, true
}

// blockHit tests whether the ray hits block bi of ring, returning the
// nearest positive-distance crossing (or an immediate hit if pos already
// lies inside or on the block's 2-D footprint).
func blockHit(db *blockdb.DB, ring, bi int, pos, dir mgl64.Vec3) (Hit, bool) {
	_, rec := db.Block(ring, bi)
	rect := geom2d.Rect{C1: rec.Corners.C1, C2: rec.Corners.C2, C3: rec.Corners.C3, C4: rec.Corners.C4}
	p2 := mgl64.Vec2{pos.X(), pos.Y()}

	switch geom2d.PointVsRect(p2, rect) {
	case geom2d.Inside, geom2d.OnBoundary:
		return Hit{Kind: KindBlockHit, Distance: 0, Position: pos, Block: bi}, true
	}

	corners := [4]mgl64.Vec2{rec.Corners.C1, rec.Corners.C2, rec.Corners.C3, rec.Corners.C4}
	best := math.Inf(1)
	found := false
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		if t, ok := raySegment(p2, mgl64.Vec2{dir.X(), dir.Y()}, a, b); ok && t < best {
			z := pos.Z() + t*dir.Z()
			if z < rec.MinZ-detconst.GeomEps || z > rec.MaxZ+detconst.GeomEps {
				continue
			}
			best = t
			found = true
		}
	}
	if !found {
		return Hit{}, false
	}
	return Hit{Kind: KindBlockHit, Distance: best, Position: pos.Add(dir.Mul(best)), Block: bi}, true
}

// raySegment intersects the ray p+t*d (t>0) with the segment [a,b],
// returning the ray parameter t (a true 3-D distance when d carries the
// unnormalized xy components of a unit 3-D direction).
func raySegment(p, d, a, b mgl64.Vec2) (float64, bool) {
	e := b.Sub(a)
	det := e.X()*d.Y() - e.Y()*d.X()
	if math.Abs(det) < detconst.GeomEps {
		return 0, false
	}
	diff := a.Sub(p)
	t := (e.X()*diff.Y() - e.Y()*diff.X()) / det
	s := (d.X()*diff.Y() - d.Y()*diff.X()) / det
	if t <= detconst.GeomEps || s < -detconst.GeomEps || s > 1+detconst.GeomEps {
		return 0, false
	}
	return t, true
}
