package detdriver

import (
	"github.com/simset/detcore/internal/blockdb"
	"github.com/simset/detcore/internal/cylgeom"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/intrablock"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/ringwalker"
	"github.com/simset/detcore/internal/xsect"
)

// BlockTracker adapts blockdb+ringwalker (between blocks) and intrablock
// (inside a block) to the Tracker interface for a block detector. Gap
// material between blocks is vacuum: ringwalker hops never consume free
// paths, only intrablock walks do.
type BlockTracker struct {
	DB    *blockdb.DB
	XSect xsect.CrossSections

	ring, zone int
	inBlock    bool
	block      int
}

func NewBlockTracker(db *blockdb.DB, xs xsect.CrossSections) *BlockTracker {
	return &BlockTracker{DB: db, XSect: xs}
}

func (t *BlockTracker) Clone() Tracker {
	c := *t
	return &c
}

func (t *BlockTracker) IsBlockShape() bool { return true }

// Project locates the ring containing the photon's axial position, then
// places the photon on that ring's entry surface. A photon emitted inside
// the bore (nearer the axis than InnerXRad, the canonical annihilation-
// inside-the-gantry case) is projected outward onto the inner surface; a
// photon approaching from outside the ring is projected inward onto
// OuterXRad, as before. A photon already between the two is left where it
// is.
func (t *BlockTracker) Project(p *photon.Photon) bool {
	ring, ok := t.DB.FindRing(p.Location.Z(), 0)
	if !ok {
		return false
	}
	ringShape := t.DB.Shape().Rings[ring]
	rSquared := p.Location.X()*p.Location.X() + p.Location.Y()*p.Location.Y()

	switch {
	case rSquared < ringShape.InnerXRad*ringShape.InnerXRad-detconst.GeomEps:
		inner := cylgeom.Cylinder{Radius: ringShape.InnerXRad}
		hit, dist, ok := cylgeom.ProjectToCylinder(p.Location, p.Direction, inner)
		if !ok || dist < 0 || hit.Z() < ringShape.MinZ || hit.Z() >= ringShape.MaxZ {
			return false
		}
		p.Location = hit
		p.TravelDistance += dist

	case rSquared > ringShape.OuterXRad*ringShape.OuterXRad+detconst.GeomEps:
		outer := cylgeom.Cylinder{Radius: ringShape.OuterXRad}
		hit, dist, ok := cylgeom.ProjectToCylinder(p.Location, p.Direction, outer)
		if !ok || dist < 0 || hit.Z() < ringShape.MinZ || hit.Z() >= ringShape.MaxZ {
			return false
		}
		p.Location = hit
		p.TravelDistance += dist

	default:
		if p.Location.Z() < ringShape.MinZ || p.Location.Z() >= ringShape.MaxZ {
			return false
		}
	}

	t.ring = ring
	t.zone = t.DB.FindZone(ring, p.Location, 0)
	t.inBlock = false
	return true
}

// Step resolves exactly one segment: either a geometric hop between blocks
// (zone/ring boundary, or entering a block's bounding box), or one
// free-path-consuming walk inside the current block.
func (t *BlockTracker) Step(p *photon.Photon, fp float64) StepResult {
	if !t.inBlock {
		return t.stepBetweenBlocks(p)
	}
	return t.stepInsideBlock(p, fp)
}

func (t *BlockTracker) stepBetweenBlocks(p *photon.Photon) StepResult {
	hit := ringwalker.FindNextEvent(t.DB, p.Location, p.Direction, t.ring, t.zone)

	switch hit.Kind {
	case ringwalker.KindBlockHit:
		p.Location = hit.Position
		p.TravelDistance += hit.Distance
		t.inBlock = true
		t.block = hit.Block
		return StepResult{Action: Cross, Position: hit.Position}

	case ringwalker.KindZoneNext, ringwalker.KindZonePrev:
		t.zone = hit.Zone
		p.Location = hit.Position
		p.TravelDistance += hit.Distance
		return StepResult{Action: Cross, Position: hit.Position}

	case ringwalker.KindRingNext, ringwalker.KindRingPrev:
		if hit.Ring < 0 || hit.Ring >= t.DB.NumRings() {
			return StepResult{Action: Discard}
		}
		p.Location = hit.Position
		p.TravelDistance += hit.Distance
		t.ring = hit.Ring
		t.zone = t.DB.FindZone(hit.Ring, hit.Position, t.zone)
		return StepResult{Action: Cross, Position: hit.Position}

	default:
		return StepResult{Action: Discard}
	}
}

func (t *BlockTracker) stepInsideBlock(p *photon.Photon, fp float64) StepResult {
	block, _ := t.DB.Block(t.ring, t.block)
	posLocal := t.DB.TomoToBlock(t.ring, t.block, p.Location)
	dirLocal := t.DB.TomoToBlockDir(t.ring, t.block, p.Direction)

	res := intrablock.Distance(posLocal, dirLocal, &block, fp, detconst.LongSegment, p.Energy, t.XSect)

	exitLocal := posLocal.Add(dirLocal.Mul(res.TravelDistance))
	tomoPos := t.DB.BlockToTomo(t.ring, t.block, exitLocal)
	p.Location = tomoPos
	p.TravelDistance += res.TravelDistance

	if res.Exited {
		t.inBlock = false
		return StepResult{Action: Cross, Position: tomoPos, FreePathsUsed: res.FreePathsUsed}
	}

	return StepResult{
		Action:        Interact,
		Position:      tomoPos,
		FreePathsUsed: res.FreePathsUsed,
		Material:      int(res.LastMaterial),
		Active:        res.WasActive,
		Where: photon.Index{
			Ring:    t.ring,
			Block:   t.block,
			Layer:   res.LayerIdx,
			Element: res.ElemIdx,
		},
	}
}
