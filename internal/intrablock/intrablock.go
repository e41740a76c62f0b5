// Package intrablock walks a photon through a block's 3-D grid of material
// elements: either accumulating the optical path along a fixed travel
// distance, or consuming a budget of free paths until an interaction,
// bounding-box exit, or a distance cap is reached. Both operations share one
// walk, factored as walkRay with a per-segment closure, to avoid keeping two
// parallel copies of the same stepping logic.
package intrablock

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/shapes"
	"github.com/simset/detcore/internal/xsect"
)

// segment is one element-to-element step of the walk.
type segment struct {
	material shapes.Material
	active   bool
	distance float64
	exited   bool // left the block's bounding box on this step
	layerIdx int
	elemIdx  int
}

// walkRay advances posLocal along dirLocal inside block's bounding box, at
// each step locating the current element, computing the distance to the
// nearest face crossing (clamped to limit), and invoking onSegment. It stops
// when the accumulated distance reaches limit, the photon exits the
// bounding box, or onSegment reports it is done.
func walkRay(block *shapes.Block, posLocal, dirLocal mgl64.Vec3, limit float64, onSegment func(seg segment) (done bool)) {
	if len(block.Layers) == 1 && len(block.Layers[0].Elements) == 1 {
		elem := block.Layers[0].Elements[0]
		exitDist := boxExitDistance(posLocal, dirLocal, block)
		hitsWall := exitDist <= limit
		step := exitDist
		if !hitsWall {
			step = limit
		}
		if onSegment(segment{material: elem.Material, active: elem.Active, distance: step}) {
			return
		}
		if hitsWall {
			onSegment(segment{exited: true})
		}
		return
	}

	signX, signY, signZ := faceSign(dirLocal.X()), faceSign(dirLocal.Y()), faceSign(dirLocal.Z())

	pos := clampToBox(posLocal, block)
	remaining := limit

	for remaining > detconst.WalkStop {
		layerIdx, elemIdx, ok := getElementIndex(pos, block)
		if !ok {
			onSegment(segment{exited: true})
			return
		}
		layer := block.Layers[layerIdx]
		elem := layer.Elements[elemIdx]
		yIdx, zIdx := elemIdx%layer.NumY(), elemIdx/layer.NumY()

		dx := faceDistance(pos.X(), dirLocal.X(), layer.InnerX, layer.OuterX, signX)
		dy := faceDistanceList(pos.Y(), dirLocal.Y(), layer.YChanges, yIdx, signY)
		dz := faceDistanceList(pos.Z(), dirLocal.Z(), layer.ZChanges, zIdx, signZ)

		step := math.Min(dx, math.Min(dy, dz))
		if step > remaining {
			step = remaining
		}
		if math.IsInf(step, 1) {
			onSegment(segment{exited: true})
			return
		}

		seg := segment{material: elem.Material, active: elem.Active, distance: step, layerIdx: layerIdx, elemIdx: elemIdx}
		if onSegment(seg) {
			return
		}

		advance := step + detconst.BoundaryNudge
		pos = pos.Add(dirLocal.Mul(advance))
		remaining -= step

		if outsideBox(pos, block) {
			onSegment(segment{exited: true})
			return
		}
	}
}

func faceSign(c float64) int {
	switch {
	case c > 0:
		return 1
	case c < 0:
		return -1
	default:
		return 0
	}
}

// faceDistance returns the distance along the axis to the nearer face of
// [lo,hi), given the signed direction component; +Inf if motion is away
// from both faces.
func faceDistance(x, c, lo, hi float64, sign int) float64 {
	switch sign {
	case 1:
		return (hi - x) / c
	case -1:
		return (lo - x) / c
	default:
		return math.Inf(1)
	}
}

// faceDistanceList returns the distance to the next partition boundary
// along an axis whose cells are delimited by changes (ascending), given the
// current cell index.
func faceDistanceList(x, c float64, changes []float64, idx int, sign int) float64 {
	switch sign {
	case 1:
		if idx >= len(changes) {
			return math.Inf(1)
		}
		return (changes[idx] - x) / c
	case -1:
		if idx == 0 {
			return math.Inf(1)
		}
		return (changes[idx-1] - x) / c
	default:
		return math.Inf(1)
	}
}

// boxExitDistance returns the distance along dir to the nearest face of
// block's bounding box, for the single-element fast path (no internal
// partitions to walk through).
func boxExitDistance(pos, dir mgl64.Vec3, block *shapes.Block) float64 {
	dx := faceDistance(pos.X(), dir.X(), block.XMin, block.XMax, faceSign(dir.X()))
	dy := faceDistance(pos.Y(), dir.Y(), block.YMin, block.YMax, faceSign(dir.Y()))
	dz := faceDistance(pos.Z(), dir.Z(), block.ZMin, block.ZMax, faceSign(dir.Z()))
	return math.Min(dx, math.Min(dy, dz))
}

func clampToBox(p mgl64.Vec3, block *shapes.Block) mgl64.Vec3 {
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return mgl64.Vec3{
		clamp(p.X(), block.XMin, block.XMax),
		clamp(p.Y(), block.YMin, block.YMax),
		clamp(p.Z(), block.ZMin, block.ZMax),
	}
}

func outsideBox(p mgl64.Vec3, block *shapes.Block) bool {
	eps := detconst.ElementEps
	return p.X() < block.XMin-eps || p.X() > block.XMax+eps ||
		p.Y() < block.YMin-eps || p.Y() > block.YMax+eps ||
		p.Z() < block.ZMin-eps || p.Z() > block.ZMax+eps
}

// getElementIndex locates the (layer, element) a block-local position falls
// in, per the x-layer half-open interval / y,z smallest-index-below rules.
// ok is false when the position is outside every x-layer.
func getElementIndex(p mgl64.Vec3, block *shapes.Block) (layerIdx, elemIdx int, ok bool) {
	eps := detconst.ElementEps
	for li, layer := range block.Layers {
		isLast := li == len(block.Layers)-1
		if p.X() < layer.InnerX-eps {
			continue
		}
		if p.X() >= layer.OuterX-eps && !isLast {
			continue
		}
		if p.X() > layer.OuterX+eps {
			continue
		}
		yIdx := indexBelow(layer.YChanges, p.Y())
		zIdx := indexBelow(layer.ZChanges, p.Z())
		return li, zIdx*layer.NumY() + yIdx, true
	}
	return 0, 0, false
}

// indexBelow returns the smallest i such that v < changes[i], or
// len(changes) if no such i exists.
func indexBelow(changes []float64, v float64) int {
	eps := detconst.ElementEps
	for i, c := range changes {
		if v < c-eps {
			return i
		}
	}
	return len(changes)
}

// FreePaths computes the optical path integral along dir for travelDistance,
// constrained to the block's local bounding box (intraFreePaths).
func FreePaths(posLocal, dirLocal mgl64.Vec3, block *shapes.Block, travelDistance float64, energyKeV float64, xs xsect.CrossSections) float64 {
	var total float64
	walkRay(block, posLocal, dirLocal, travelDistance, func(seg segment) bool {
		if seg.exited {
			return true
		}
		total += xs.Attenuation(int(seg.material), energyKeV) * seg.distance
		return false
	})
	return total
}

// DistanceResult is intraDistance's output.
type DistanceResult struct {
	TravelDistance float64
	FreePathsUsed  float64
	LastMaterial   shapes.Material
	WasActive      bool
	Exited         bool
	LayerIdx       int
	ElemIdx        int
}

// Distance consumes freePaths walking from posLocal along dirLocal, stopping
// at an interaction, a bounding-box exit, or maxTravelDistance (whichever
// comes first) (intraDistance).
func Distance(posLocal, dirLocal mgl64.Vec3, block *shapes.Block, freePaths, maxTravelDistance, energyKeV float64, xs xsect.CrossSections) DistanceResult {
	var result DistanceResult
	curFreePaths := freePaths
	var traveled float64

	walkRay(block, posLocal, dirLocal, maxTravelDistance, func(seg segment) bool {
		if seg.exited {
			result.Exited = true
			result.TravelDistance = traveled
			result.FreePathsUsed = freePaths - curFreePaths
			return true
		}

		mu := xs.Attenuation(int(seg.material), energyKeV)
		segFP := mu * seg.distance

		if segFP >= curFreePaths {
			// Interaction happens within this segment.
			var stepDist float64
			if mu > 0 {
				stepDist = curFreePaths / mu
			}
			traveled += stepDist
			result.TravelDistance = traveled
			result.FreePathsUsed = freePaths
			result.LastMaterial = seg.material
			result.WasActive = seg.active
			result.LayerIdx = seg.layerIdx
			result.ElemIdx = seg.elemIdx
			return true
		}

		curFreePaths -= segFP
		// The nudge consumed in walkRay corresponds to detconst.BoundaryNudge
		// of travel at this segment's mu; if that pushes curFreePaths
		// negative, correct by half the nudge's free-path contribution.
		nudgeFP := mu * detconst.BoundaryNudge
		if curFreePaths-nudgeFP < 0 {
			curFreePaths += nudgeFP / 2
		}
		traveled += seg.distance
		result.LastMaterial = seg.material
		result.WasActive = seg.active
		result.LayerIdx = seg.layerIdx
		result.ElemIdx = seg.elemIdx
		return false
	})

	if !result.Exited && result.FreePathsUsed == 0 && traveled >= maxTravelDistance-detconst.WalkStop {
		result.TravelDistance = maxTravelDistance
		result.FreePathsUsed = freePaths - curFreePaths
	}

	return result
}
