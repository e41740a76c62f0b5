package detdriver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/plnrtracker"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/shapes"
	"github.com/simset/detcore/internal/xsect"
)

// PlanarTracker adapts plnrtracker.FindNextInteraction to the Tracker
// interface for a planar or dual-headed detector. Project switches the
// photon's Location/Direction into detector-local coordinates; the rest of
// the walk stays in that frame. Driver.finish converts the detected
// position back to tomograph coordinates via ToTomograph.
type PlanarTracker struct {
	Shape *shapes.Planar
	XSect xsect.CrossSections
	layer int

	viewCount int
}

func NewPlanarTracker(shape *shapes.Planar, xs xsect.CrossSections) *PlanarTracker {
	return &PlanarTracker{Shape: shape, XSect: xs}
}

func (t *PlanarTracker) Clone() Tracker {
	c := *t
	return &c
}

func (t *PlanarTracker) IsBlockShape() bool { return false }

// AssignViewAngle sets p.ViewAngle (radians) from the shape's view-selection
// mode ahead of Project: NumViews discrete angles cycled in order for
// ViewFixedCount, or a uniform draw over [MinAngleDeg, MaxAngleDeg] for
// ViewRandomPerDecay and ViewContinuous (a continuously rotating gantry's
// angle at an arbitrary decay is, absent a modeled rotation rate, uniform
// over its swept range same as a per-decay random draw).
func (t *PlanarTracker) AssignViewAngle(p *photon.Photon, src rng.Source) {
	span := t.Shape.MaxAngleDeg - t.Shape.MinAngleDeg

	var angleDeg float64
	switch t.Shape.ViewMode {
	case shapes.ViewFixedCount:
		n := t.Shape.NumViews
		if n <= 0 {
			n = 1
		}
		idx := t.viewCount % n
		t.viewCount++
		angleDeg = t.Shape.MinAngleDeg + span*float64(idx)/float64(n)

	default: // ViewRandomPerDecay, ViewContinuous
		angleDeg = t.Shape.MinAngleDeg + src.Uniform()*span
	}

	p.ViewAngle = angleDeg * math.Pi / 180
}

// ToTomograph converts a detector-local position back into tomograph-frame
// coordinates at the given view angle.
func (t *PlanarTracker) ToTomograph(local mgl64.Vec3, viewAngle float64) mgl64.Vec3 {
	return plnrtracker.ToTomograph(local, viewAngle, t.Shape.InnerRadius)
}

func (t *PlanarTracker) Project(p *photon.Photon) bool {
	local := plnrtracker.ToDetectorLocal(p.Location, p.ViewAngle, t.Shape.InnerRadius)
	dirLocal := plnrtracker.DirToDetectorLocal(p.Direction, p.ViewAngle)

	if dirLocal.X() == 0 {
		return false
	}
	dist := -local.X() / dirLocal.X()
	if dist < 0 {
		return false
	}

	hit := local.Add(dirLocal.Mul(dist))
	if math.Abs(hit.Y()) > t.Shape.TransaxialLength/2 || math.Abs(hit.Z()) > t.Shape.AxialLength/2 {
		return false
	}

	p.Location = hit
	p.Direction = dirLocal
	p.TravelDistance += dist
	t.layer = 0
	return true
}

func (t *PlanarTracker) Step(p *photon.Photon, fp float64) StepResult {
	muAt := func(m shapes.Material, e float64) float64 { return t.XSect.Attenuation(int(m), e) }
	res := plnrtracker.FindNextInteraction(t.Shape, &t.layer, p.Location, p.Direction, fp, muAt, p.Energy)

	p.Location = res.Position
	p.TravelDistance += res.Distance

	action := Cross
	switch res.Action {
	case plnrtracker.Interact:
		action = Interact
	case plnrtracker.Discard:
		action = Discard
	}

	return StepResult{
		Action:        action,
		Position:      res.Position,
		FreePathsUsed: res.FreePathsUsed,
		Material:      int(res.Material),
		Active:        res.Active,
		Where:         photon.Index{Layer: t.layer},
	}
}
