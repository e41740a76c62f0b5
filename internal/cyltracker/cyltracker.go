// Package cyltracker walks a photon through a concentric-ring cylindrical
// detector: per step it projects to the nearest of the current layer's
// inner/outer cylinder walls or the current ring's axial faces, comparing
// against the free-path budget to decide interact vs. layer/ring crossing.
package cyltracker

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/cylgeom"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/shapes"
)

// Action is the outcome of one FindNextInteraction step.
type Action int

const (
	Interact Action = iota
	LayerCross
	AxialCross
	Discard
)

// State is the tracker's per-photon position in the ring/layer hierarchy.
type State struct {
	Ring  int
	Layer int
}

// Result reports what happened over one segment of the walk.
type Result struct {
	Action        Action
	Distance      float64
	Position      mgl64.Vec3
	FreePathsUsed float64
	Material      shapes.Material
	Active        bool
}

// boundary is a candidate crossing distance found by the walker.
type boundary struct {
	dist  float64
	delta int // layer or ring index delta
	axial bool
}

// MuFunc looks up linear attenuation for a material at an energy.
type MuFunc func(material shapes.Material, energyKeV float64) float64

// FindNextInteraction advances pos by the nearest boundary or the free-path
// budget fp, whichever comes first, consuming fp as it goes. State is
// updated in place on a layer or ring crossing.
func FindNextInteraction(shape *shapes.Cylindrical, state *State, pos, dir mgl64.Vec3, fp float64, muAt MuFunc, energyKeV float64) Result {
	ring := shape.Rings[state.Ring]
	layer := ring.Layers[state.Layer]

	var candidates []boundary

	outer := cylgeom.Cylinder{Radius: layer.OuterRadius}
	if _, t, ok := cylgeom.ProjectToCylinder(pos, dir, outer); ok && t > detconst.GeomEps {
		candidates = append(candidates, boundary{t, 1, false})
	}

	if layer.InnerRadius > 0 {
		inner := cylgeom.Cylinder{Radius: layer.InnerRadius}
		if _, t, ok := cylgeom.HitInnerCylinder(pos, dir, inner); ok && t > detconst.GeomEps {
			candidates = append(candidates, boundary{t, -1, false})
		}
	}

	if dir.Z() > 0 {
		if t := (ring.MaxZ - pos.Z()) / dir.Z(); t > detconst.GeomEps {
			candidates = append(candidates, boundary{t, 1, true})
		}
	} else if dir.Z() < 0 {
		if t := (pos.Z() - ring.MinZ) / -dir.Z(); t > detconst.GeomEps {
			candidates = append(candidates, boundary{t, -1, true})
		}
	}

	chosen := boundary{dist: math.Inf(1)}
	for _, c := range candidates {
		if c.dist < chosen.dist {
			chosen = c
		}
	}

	mu := muAt(layer.Material, energyKeV)
	fpToBoundary := mu * chosen.dist

	if math.IsInf(chosen.dist, 1) || fp < fpToBoundary {
		dist := fp / math.Max(mu, 1e-300)
		return Result{
			Action:        Interact,
			Distance:      dist,
			Position:      pos.Add(dir.Mul(dist)),
			FreePathsUsed: fp,
			Material:      layer.Material,
			Active:        layer.Active,
		}
	}

	newPos := pos.Add(dir.Mul(chosen.dist))
	result := Result{
		Distance:      chosen.dist,
		Position:      newPos,
		FreePathsUsed: fpToBoundary,
		Material:      layer.Material,
		Active:        layer.Active,
	}

	if chosen.axial {
		nextRing := state.Ring + chosen.delta
		if nextRing < 0 || nextRing >= len(shape.Rings) {
			result.Action = Discard
			return result
		}
		state.Ring = nextRing
		state.Layer = resolveLayer(shape.Rings[nextRing], radial2D(newPos))
		result.Action = AxialCross
		return result
	}

	nextLayer := state.Layer + chosen.delta
	if nextLayer < 0 || nextLayer >= len(ring.Layers) {
		result.Action = Discard
		return result
	}
	state.Layer = nextLayer
	result.Action = LayerCross
	return result
}

func radial2D(p mgl64.Vec3) float64 {
	return math.Hypot(p.X(), p.Y())
}

// resolveLayer finds the smallest layer index whose outer radius exceeds
// the 2-D radial position, for re-entering a ring after an axial crossing.
func resolveLayer(ring shapes.CylindricalRing, radius float64) int {
	for i, l := range ring.Layers {
		if l.OuterRadius > radius {
			return i
		}
	}
	return len(ring.Layers) - 1
}
