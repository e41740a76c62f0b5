// Package plnrtracker walks a photon through a planar or dual-headed
// detector's stack of depth layers, in detector-local coordinates: x into
// the detector (0 at the inner face, +depth at the outer), y transaxial, z
// axial.
package plnrtracker

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/shapes"
)

// Action is the outcome of one FindNextInteraction step.
type Action int

const (
	Interact Action = iota
	LayerCross
	Discard
)

// Result reports what happened over one segment of the walk.
type Result struct {
	Action        Action
	Distance      float64
	Position      mgl64.Vec3
	FreePathsUsed float64
	Material      shapes.Material
	Active        bool
}

// MuFunc looks up linear attenuation for a material at an energy.
type MuFunc func(material shapes.Material, energyKeV float64) float64

// ToDetectorLocal transforms a tomograph-frame point/direction into
// detector-local coordinates: rotate by -detectorAngle, translate x by
// -innerRadius.
func ToDetectorLocal(p mgl64.Vec3, detectorAngle, innerRadius float64) mgl64.Vec3 {
	cosA, sinA := math.Cos(-detectorAngle), math.Sin(-detectorAngle)
	x := p.X()*cosA - p.Y()*sinA
	y := p.X()*sinA + p.Y()*cosA
	return mgl64.Vec3{x - innerRadius, y, p.Z()}
}

// DirToDetectorLocal rotates a direction vector into detector-local
// coordinates (no translation).
func DirToDetectorLocal(d mgl64.Vec3, detectorAngle float64) mgl64.Vec3 {
	cosA, sinA := math.Cos(-detectorAngle), math.Sin(-detectorAngle)
	x := d.X()*cosA - d.Y()*sinA
	y := d.X()*sinA + d.Y()*cosA
	return mgl64.Vec3{x, y, d.Z()}
}

// ToTomograph is the inverse of ToDetectorLocal: translate x by
// +innerRadius, then rotate by +detectorAngle.
func ToTomograph(p mgl64.Vec3, detectorAngle, innerRadius float64) mgl64.Vec3 {
	cosA, sinA := math.Cos(detectorAngle), math.Sin(detectorAngle)
	x := p.X() + innerRadius
	y := p.Y()
	return mgl64.Vec3{x*cosA - y*sinA, x*sinA + y*cosA, p.Z()}
}

// DirToTomograph is the inverse of DirToDetectorLocal.
func DirToTomograph(d mgl64.Vec3, detectorAngle float64) mgl64.Vec3 {
	cosA, sinA := math.Cos(detectorAngle), math.Sin(detectorAngle)
	x, y := d.X(), d.Y()
	return mgl64.Vec3{x*cosA - y*sinA, x*sinA + y*cosA, d.Z()}
}

// layerBounds returns [frontX, backX) for layer i, given the stack starts at
// x=0 and each layer occupies its configured depth.
func layerBounds(shape *shapes.Planar, i int) (front, back float64) {
	for j := 0; j < i; j++ {
		front += shape.Layers[j].Depth
	}
	back = front + shape.Layers[i].Depth
	return
}

// FindNextInteraction advances pos (detector-local) by the nearest boundary
// or the free-path budget fp, whichever comes first. layer is updated in
// place on a crossing.
func FindNextInteraction(shape *shapes.Planar, layer *int, pos, dir mgl64.Vec3, fp float64, muAt MuFunc, energyKeV float64) Result {
	front, back := layerBounds(shape, *layer)
	l := shape.Layers[*layer]

	type face struct {
		name string
		dist float64
	}
	var faces []face
	if dir.X() > 0 {
		faces = append(faces, face{"back", (back - pos.X()) / dir.X()})
	} else if dir.X() < 0 {
		faces = append(faces, face{"front", (front - pos.X()) / dir.X()})
	}
	if dir.Y() > 0 {
		faces = append(faces, face{"yhi", (shape.TransaxialLength/2 - pos.Y()) / dir.Y()})
	} else if dir.Y() < 0 {
		faces = append(faces, face{"ylo", (-shape.TransaxialLength/2 - pos.Y()) / dir.Y()})
	}
	if dir.Z() > 0 {
		faces = append(faces, face{"zhi", (shape.AxialLength/2 - pos.Z()) / dir.Z()})
	} else if dir.Z() < 0 {
		faces = append(faces, face{"zlo", (-shape.AxialLength/2 - pos.Z()) / dir.Z()})
	}

	boundaryDist := math.Inf(1)
	which := ""
	for _, f := range faces {
		if f.dist > detconst.GeomEps && f.dist < boundaryDist {
			boundaryDist = f.dist
			which = f.name
		}
	}

	mu := muAt(l.Material, energyKeV)
	fpToBoundary := mu * boundaryDist

	if math.IsInf(boundaryDist, 1) || fp < fpToBoundary {
		dist := fp / math.Max(mu, 1e-300)
		return Result{
			Action:        Interact,
			Distance:      dist,
			Position:      pos.Add(dir.Mul(dist)),
			FreePathsUsed: fp,
			Material:      l.Material,
			Active:        l.Active,
		}
	}

	newPos := pos.Add(dir.Mul(boundaryDist))
	result := Result{
		Distance:      boundaryDist,
		Position:      newPos,
		FreePathsUsed: fpToBoundary,
		Material:      l.Material,
		Active:        l.Active,
	}

	switch which {
	case "yhi", "ylo", "zhi", "zlo":
		result.Action = Discard
		return result
	case "back":
		if *layer == len(shape.Layers)-1 {
			result.Action = Discard
			return result
		}
		*layer++
		result.Action = LayerCross
		return result
	case "front":
		if *layer == 0 {
			result.Action = Discard
			return result
		}
		*layer--
		result.Action = LayerCross
		return result
	default:
		result.Action = Discard
		return result
	}
}
