package detdriver

import (
	"github.com/simset/detcore/internal/cylgeom"
	"github.com/simset/detcore/internal/cyltracker"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/shapes"
	"github.com/simset/detcore/internal/xsect"
)

// CylTracker adapts cyltracker.FindNextInteraction to the Tracker interface
// for a concentric-ring cylindrical detector.
type CylTracker struct {
	Shape *shapes.Cylindrical
	XSect xsect.CrossSections
	state cyltracker.State
}

// NewCylTracker returns a CylTracker ready to project a photon.
func NewCylTracker(shape *shapes.Cylindrical, xs xsect.CrossSections) *CylTracker {
	return &CylTracker{Shape: shape, XSect: xs}
}

func (t *CylTracker) Clone() Tracker {
	c := *t
	return &c
}

func (t *CylTracker) IsBlockShape() bool { return false }

// Project finds the ring whose axial range contains the photon's entry
// point, trying rings in order (ring axial ranges are non-overlapping). A
// photon emitted inside the bore (nearer the axis than the innermost
// layer's InnerRadius, the canonical annihilation-inside-the-gantry case)
// is projected outward onto that inner surface; a photon approaching from
// outside the ring is projected inward onto the outermost layer's
// OuterRadius, as before. A photon already between the two is left where it
// is.
func (t *CylTracker) Project(p *photon.Photon) bool {
	for ri, ring := range t.Shape.Rings {
		if len(ring.Layers) == 0 {
			continue
		}
		innerRadius := ring.Layers[0].InnerRadius
		outerRadius := ring.Layers[len(ring.Layers)-1].OuterRadius
		rSquared := p.Location.X()*p.Location.X() + p.Location.Y()*p.Location.Y()

		switch {
		case rSquared < innerRadius*innerRadius-detconst.GeomEps:
			inner := cylgeom.Cylinder{Radius: innerRadius}
			hit, dist, ok := cylgeom.ProjectToCylinder(p.Location, p.Direction, inner)
			if !ok || hit.Z() < ring.MinZ || hit.Z() >= ring.MaxZ {
				continue
			}
			p.Location = hit
			p.TravelDistance += dist

		case rSquared > outerRadius*outerRadius+detconst.GeomEps:
			outer := cylgeom.Cylinder{Radius: outerRadius}
			hit, dist, ok := cylgeom.ProjectToCylinder(p.Location, p.Direction, outer)
			if !ok || hit.Z() < ring.MinZ || hit.Z() >= ring.MaxZ {
				continue
			}
			p.Location = hit
			p.TravelDistance += dist

		default:
			if p.Location.Z() < ring.MinZ || p.Location.Z() >= ring.MaxZ {
				continue
			}
		}

		t.state = cyltracker.State{Ring: ri, Layer: 0}
		return true
	}
	return false
}

func (t *CylTracker) Step(p *photon.Photon, fp float64) StepResult {
	muAt := func(m shapes.Material, e float64) float64 { return t.XSect.Attenuation(int(m), e) }
	res := cyltracker.FindNextInteraction(t.Shape, &t.state, p.Location, p.Direction, fp, muAt, p.Energy)

	p.Location = res.Position
	p.TravelDistance += res.Distance

	action := Cross
	switch res.Action {
	case cyltracker.Interact:
		action = Interact
	case cyltracker.Discard:
		action = Discard
	}

	return StepResult{
		Action:        action,
		Position:      res.Position,
		FreePathsUsed: res.FreePathsUsed,
		Material:      int(res.Material),
		Active:        res.Active,
		Where:         photon.Index{Ring: t.state.Ring, Layer: t.state.Layer},
	}
}
