// Package blockdb builds and queries the static per-run database of block
// detector geometry: per-(ring,block) coordinate transforms and derived
// tomograph-frame tables, and the angular zone partition used to bound the
// candidate blocks a ray must be tested against.
//
// Block records live in one arena per ring (shapes.Block values, already
// owned by shapes.BlockRing.Blocks) and the (ring,zone) index is a slice of
// block indices rather than raw pointers.
package blockdb

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/collimator"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/geom2d"
	"github.com/simset/detcore/internal/shapes"
)

// Corners are a block's four tomograph-frame corners, in order around the
// boundary (matching geom2d.Rect's corner_1..corner_4 convention).
type Corners struct {
	C1, C2, C3, C4 mgl64.Vec2
}

func (c Corners) rect() geom2d.Rect {
	return geom2d.Rect{C1: c.C1, C2: c.C2, C3: c.C3, C4: c.C4}
}

// Arc is a block's subtended angular span around the origin, expressed as
// direction-cosine pairs (blocks lie outside the origin, so a subtended arc
// is always < pi).
type Arc struct {
	LoCos, LoSin float64
	HiCos, HiSin float64
}

func (a Arc) loAngle() float64 { return math.Atan2(a.LoSin, a.LoCos) }
func (a Arc) hiAngle() float64 { return math.Atan2(a.HiSin, a.HiCos) }

// BlockRecord is the derived, per-(ring,block) data computed once at load
// time: tomograph-frame corners, axial bounds, subtended arc, and the
// reference-point transform parameters.
type BlockRecord struct {
	Corners      Corners
	MinZ, MaxZ   float64
	Arc          Arc
	PositionTomo mgl64.Vec3 // block reference point, tomograph frame
	FaceAngle    float64    // alpha + local block orientation, radians
}

// Zone is one angular wedge of a ring, holding the indices (into the ring's
// block slice) of every block whose subtended arc intersects it.
type Zone struct {
	LoCos, LoSin float64
	HiCos, HiSin float64
	Blocks       []int
}

func (z Zone) loAngle() float64 { return math.Atan2(z.LoSin, z.LoCos) }
func (z Zone) hiAngle() float64 { return math.Atan2(z.HiSin, z.HiCos) }

// ringIndex is the derived state for one ring: its blocks' records, in the
// same order as shapes.BlockRing.Blocks, and its zone partition.
type ringIndex struct {
	minZ, maxZ float64
	records    []BlockRecord
	zones      []Zone
}

// DB is the complete, immutable block database for a block detector.
type DB struct {
	shape *shapes.BlockDetector
	rings []ringIndex
}

// Shape returns the underlying descriptor the database was built from.
func (db *DB) Shape() *shapes.BlockDetector { return db.shape }

// NumRings returns the number of rings in the detector.
func (db *DB) NumRings() int { return len(db.rings) }

// Block returns the ring's block descriptor and its derived record.
func (db *DB) Block(ring, b int) (shapes.Block, BlockRecord) {
	return db.shape.Rings[ring].Blocks[b], db.rings[ring].records[b]
}

// ZoneBlocks returns the block indices registered against (ring,zone).
func (db *DB) ZoneBlocks(ring, zone int) []int {
	return db.rings[ring].zones[zone].Blocks
}

// NumZones returns the number of angular zones in a ring.
func (db *DB) NumZones(ring int) int { return len(db.rings[ring].zones) }

// ZoneBounds returns the (ring,zone)'s boundary direction-cosine pairs.
func (db *DB) ZoneBounds(ring, zone int) (loCos, loSin, hiCos, hiSin float64) {
	z := db.rings[ring].zones[zone]
	return z.LoCos, z.LoSin, z.HiCos, z.HiSin
}

// Build validates and indexes a block detector descriptor, computing every
// block's tomograph-frame corners/arc and the angular zone partition.
func Build(shape *shapes.BlockDetector) (*DB, error) {
	db := &DB{shape: shape, rings: make([]ringIndex, len(shape.Rings))}

	prevMaxZ := math.Inf(-1)
	for ri := range shape.Rings {
		ring := &shape.Rings[ri]
		if ring.MinZ >= ring.MaxZ {
			return nil, fmt.Errorf("blockdb: ring %d has non-monotone axial range [%g,%g]", ri, ring.MinZ, ring.MaxZ)
		}
		if ring.MinZ < prevMaxZ {
			return nil, fmt.Errorf("blockdb: ring %d overlaps the previous ring axially", ri)
		}
		prevMaxZ = ring.MaxZ

		rix := ringIndex{minZ: ring.MinZ, maxZ: ring.MaxZ}
		rix.records = make([]BlockRecord, len(ring.Blocks))

		for bi := range ring.Blocks {
			rec, err := buildBlockRecord(ring, &ring.Blocks[bi])
			if err != nil {
				return nil, fmt.Errorf("blockdb: ring %d block %d: %w", ri, bi, err)
			}
			if err := validateBlockBounds(ring, rec); err != nil {
				return nil, fmt.Errorf("blockdb: ring %d block %d: %w", ri, bi, err)
			}
			rix.records[bi] = rec
		}

		for a := 0; a < len(rix.records); a++ {
			for b := a + 1; b < len(rix.records); b++ {
				rel := geom2d.RectsIntersect(rix.records[a].Corners.rect(), rix.records[b].Corners.rect())
				if rel == geom2d.Inside {
					return nil, fmt.Errorf("blockdb: ring %d blocks %d and %d overlap", ri, a, b)
				}
			}
		}

		rix.zones = partitionZones(rix.records)
		db.rings[ri] = rix
	}

	return db, nil
}

// buildBlockRecord computes a block's tomograph-frame position, corners,
// axial bounds and subtended arc.
func buildBlockRecord(ring *shapes.BlockRing, block *shapes.Block) (BlockRecord, error) {
	alpha := block.AngleRad + ring.Rotation
	x := block.Radius * math.Cos(alpha)
	y := block.Radius * math.Sin(alpha)
	z := block.Z + ring.AxialShift
	faceAngle := alpha + block.Orientation

	pos := mgl64.Vec3{x, y, z}

	local := [4]mgl64.Vec2{
		{block.XMin, block.YMin},
		{block.XMax, block.YMin},
		{block.XMax, block.YMax},
		{block.XMin, block.YMax},
	}
	cosA, sinA := math.Cos(faceAngle), math.Sin(faceAngle)
	var tomoCorners [4]mgl64.Vec2
	for i, c := range local {
		tomoCorners[i] = mgl64.Vec2{
			x + c.X()*cosA - c.Y()*sinA,
			y + c.X()*sinA + c.Y()*cosA,
		}
	}
	corners := Corners{C1: tomoCorners[0], C2: tomoCorners[1], C3: tomoCorners[2], C4: tomoCorners[3]}

	arc, err := subtendedArc(tomoCorners)
	if err != nil {
		return BlockRecord{}, err
	}

	return BlockRecord{
		Corners:      corners,
		MinZ:         z + block.ZMin,
		MaxZ:         z + block.ZMax,
		Arc:          arc,
		PositionTomo: pos,
		FaceAngle:    faceAngle,
	}, nil
}

// subtendedArc returns the [minAngle,maxAngle] direction-cosine pair that
// bounds all four corners' angular position around the origin. Blocks are
// assumed to lie entirely outside the origin, so the subtended arc is < pi.
func subtendedArc(corners [4]mgl64.Vec2) (Arc, error) {
	loCos, loSin := math.Cos(math.Atan2(corners[0].Y(), corners[0].X())), math.Sin(math.Atan2(corners[0].Y(), corners[0].X()))
	hiCos, hiSin := loCos, loSin
	for _, c := range corners[1:] {
		cc, cs := geom2d.DirCosines(mgl64.Vec2{0, 0}, c)
		if geom2d.DirCosCompare(cc, cs, loCos, loSin) < 0 {
			loCos, loSin = cc, cs
		}
		if geom2d.DirCosCompare(cc, cs, hiCos, hiSin) > 0 {
			hiCos, hiSin = cc, cs
		}
	}
	return Arc{LoCos: loCos, LoSin: loSin, HiCos: hiCos, HiSin: hiSin}, nil
}

// validateBlockBounds enforces the load-time geometry invariants: every
// corner (and, via the chord-distance check, every edge) must lie outside
// the ring's inner bound and inside its outer bound.
func validateBlockBounds(ring *shapes.BlockRing, rec BlockRecord) error {
	corners := []mgl64.Vec2{rec.Corners.C1, rec.Corners.C2, rec.Corners.C3, rec.Corners.C4}
	for _, c := range corners {
		rx, ry := c.X()/maxFloat(ring.OuterXRad, 1e-12), c.Y()/maxFloat(ring.OuterYRad, 1e-12)
		if rx*rx+ry*ry > 1.0+detconst.GeomEps {
			return fmt.Errorf("corner %v lies outside the ring's outer bound", c)
		}
		ix, iy := c.X()/maxFloat(ring.InnerXRad, 1e-12), c.Y()/maxFloat(ring.InnerYRad, 1e-12)
		if ring.InnerXRad > 0 && ring.InnerYRad > 0 && ix*ix+iy*iy < 1.0-detconst.GeomEps {
			return fmt.Errorf("corner %v lies inside the ring's inner bound", c)
		}
	}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		if chordDistance(a, b) < minFloat(ring.InnerXRad, ring.InnerYRad)-detconst.GeomEps {
			return fmt.Errorf("edge %d crosses the ring's inner bound", i)
		}
	}
	return nil
}

// ValidateAgainstCollimator enforces that no block corner lies inside
// bound's cylinder, nor outside its axial range: a collimator stage placed
// in front of the detector ring must not physically overlap it.
func (db *DB) ValidateAgainstCollimator(bound collimator.Bound) error {
	radius := bound.OuterRadius()
	minZ, maxZ := bound.AxialRange()
	for ri, rix := range db.rings {
		for bi, rec := range rix.records {
			corners := []mgl64.Vec2{rec.Corners.C1, rec.Corners.C2, rec.Corners.C3, rec.Corners.C4}
			for _, c := range corners {
				if c.X()*c.X()+c.Y()*c.Y() < radius*radius-detconst.GeomEps {
					return fmt.Errorf("blockdb: ring %d block %d has a corner inside the collimator radius", ri, bi)
				}
			}
			if rec.MinZ < minZ-detconst.GeomEps || rec.MaxZ > maxZ+detconst.GeomEps {
				return fmt.Errorf("blockdb: ring %d block %d lies outside the collimator's axial range", ri, bi)
			}
		}
	}
	return nil
}

// chordDistance returns the minimum distance from the origin to the segment
// [a,b].
func chordDistance(a, b mgl64.Vec2) float64 {
	ab := b.Sub(a)
	t := -a.Dot(ab) / maxFloat(ab.Dot(ab), 1e-18)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Mul(t))
	return closest.Len()
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// partitionZones starts with 4 quadrants; whenever a zone holds more than
// detconst.BlocksPerZoneCap blocks and doubling the zone count would not
// exceed detconst.MaxZonesCap, bisects every zone by angle and recounts; finally
// populates each zone's block list.
func partitionZones(records []BlockRecord) []Zone {
	zones := initialZones(detconst.InitialZoneCount)

	for {
		counts := make([]int, len(zones))
		overflowing := false
		for zi, z := range zones {
			for _, rec := range records {
				if arcOverlapsZone(rec.Arc, z) {
					counts[zi]++
				}
			}
			if counts[zi] > detconst.BlocksPerZoneCap {
				overflowing = true
			}
		}
		if !overflowing || len(zones)*2 > detconst.MaxZonesCap {
			break
		}
		zones = bisectZones(zones)
	}

	for zi := range zones {
		for bi, rec := range records {
			if arcOverlapsZone(rec.Arc, zones[zi]) {
				zones[zi].Blocks = append(zones[zi].Blocks, bi)
			}
		}
	}

	return zones
}

func initialZones(n int) []Zone {
	zones := make([]Zone, n)
	for i := 0; i < n; i++ {
		lo := 2 * math.Pi * float64(i) / float64(n)
		hi := 2 * math.Pi * float64(i+1) / float64(n)
		zones[i] = Zone{
			LoCos: math.Cos(lo), LoSin: math.Sin(lo),
			HiCos: math.Cos(hi), HiSin: math.Sin(hi),
		}
	}
	return zones
}

func bisectZones(zones []Zone) []Zone {
	out := make([]Zone, 0, len(zones)*2)
	for _, z := range zones {
		lo := z.loAngle()
		hi := z.hiAngle()
		if hi <= lo {
			hi += 2 * math.Pi
		}
		mid := (lo + hi) / 2
		midCos, midSin := math.Cos(mid), math.Sin(mid)
		out = append(out,
			Zone{LoCos: z.LoCos, LoSin: z.LoSin, HiCos: midCos, HiSin: midSin},
			Zone{LoCos: midCos, LoSin: midSin, HiCos: z.HiCos, HiSin: z.HiSin},
		)
	}
	return out
}

// arcOverlapsZone tests whether a block's subtended arc intersects a zone's
// angular span, both expressed as CCW direction-cosine pairs spanning less
// than pi; equivalent to (and derived from) pairwise geom2d.DirCosCompare
// ordering, unwrapped into plain angles for a simple circular-interval test.
func arcOverlapsZone(arc Arc, z Zone) bool {
	norm := func(a float64) float64 {
		a = math.Mod(a, 2*math.Pi)
		if a < 0 {
			a += 2 * math.Pi
		}
		return a
	}
	zLo := norm(z.loAngle())
	zLen := z.hiAngle() - z.loAngle()
	if zLen <= 0 {
		zLen += 2 * math.Pi
	}

	aLo := norm(arc.loAngle())
	aLen := arc.hiAngle() - arc.loAngle()
	if aLen <= 0 {
		aLen += 2 * math.Pi
	}

	rel := norm(aLo - zLo)
	if rel < zLen || rel+aLen >= 2*math.Pi {
		return true
	}
	return rel+aLen > 2*math.Pi // wrapped tail overlaps zone start
}

// TomoToBlock transforms a tomograph-frame point into block-local
// coordinates: a 2-D rotation about the block's reference point followed by
// translation; z is unchanged.
func (db *DB) TomoToBlock(ring, b int, p mgl64.Vec3) mgl64.Vec3 {
	rec := db.rings[ring].records[b]
	dx, dy := p.X()-rec.PositionTomo.X(), p.Y()-rec.PositionTomo.Y()
	cosA, sinA := math.Cos(rec.FaceAngle), math.Sin(rec.FaceAngle)
	lx := dx*cosA + dy*sinA
	ly := -dx*sinA + dy*cosA
	return mgl64.Vec3{lx, ly, p.Z() - rec.PositionTomo.Z()}
}

// BlockToTomo is the inverse of TomoToBlock.
func (db *DB) BlockToTomo(ring, b int, p mgl64.Vec3) mgl64.Vec3 {
	rec := db.rings[ring].records[b]
	cosA, sinA := math.Cos(rec.FaceAngle), math.Sin(rec.FaceAngle)
	dx := p.X()*cosA - p.Y()*sinA
	dy := p.X()*sinA + p.Y()*cosA
	return mgl64.Vec3{dx + rec.PositionTomo.X(), dy + rec.PositionTomo.Y(), p.Z() + rec.PositionTomo.Z()}
}

// TomoToBlockDir rotates a direction vector (no translation).
func (db *DB) TomoToBlockDir(ring, b int, d mgl64.Vec3) mgl64.Vec3 {
	rec := db.rings[ring].records[b]
	cosA, sinA := math.Cos(rec.FaceAngle), math.Sin(rec.FaceAngle)
	lx := d.X()*cosA + d.Y()*sinA
	ly := -d.X()*sinA + d.Y()*cosA
	return mgl64.Vec3{lx, ly, d.Z()}
}

// BlockToTomoDir is the inverse of TomoToBlockDir.
func (db *DB) BlockToTomoDir(ring, b int, d mgl64.Vec3) mgl64.Vec3 {
	rec := db.rings[ring].records[b]
	cosA, sinA := math.Cos(rec.FaceAngle), math.Sin(rec.FaceAngle)
	dx := d.X()*cosA - d.Y()*sinA
	dy := d.X()*sinA + d.Y()*cosA
	return mgl64.Vec3{dx, dy, d.Z()}
}

// FindRing does a hint-first linear scan (outward from hintRing) for the
// ring containing z: most calls land in the same ring as the previous
// lookup, so trying the hint first avoids a full scan in the common case.
func (db *DB) FindRing(z float64, hintRing int) (int, bool) {
	n := len(db.rings)
	if n == 0 {
		return 0, false
	}
	if hintRing < 0 || hintRing >= n {
		hintRing = 0
	}
	for offset := 0; offset < n; offset++ {
		for _, idx := range []int{hintRing + offset, hintRing - offset} {
			if idx < 0 || idx >= n {
				continue
			}
			r := db.rings[idx]
			if z >= r.minZ && z < r.maxZ {
				return idx, true
			}
		}
	}
	return 0, false
}

// FindZone locates the zone within ring that contains position's angular
// direction, starting the dirCosCompare scan from hintZone.
func (db *DB) FindZone(ring int, position mgl64.Vec3, hintZone int) int {
	zones := db.rings[ring].zones
	n := len(zones)
	if n == 0 {
		return 0
	}
	cx, cy := geom2d.DirCosines(mgl64.Vec2{0, 0}, mgl64.Vec2{position.X(), position.Y()})
	if hintZone < 0 || hintZone >= n {
		hintZone = 0
	}
	for offset := 0; offset < n; offset++ {
		for _, idx := range []int{hintZone + offset, hintZone - offset + n} {
			zi := idx % n
			z := zones[zi]
			if geom2d.DirCosCompare(cx, cy, z.LoCos, z.LoSin) >= 0 &&
				geom2d.DirCosCompare(cx, cy, z.HiCos, z.HiSin) <= 0 {
				return zi
			}
		}
	}
	return hintZone
}
