// Package centroid computes a completed photon's detected position from
// its active-layer interaction list, with optional snap-to-nearest-active-
// element for block detectors and optional Gaussian energy/time blur.
package centroid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/blockdb"
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/shapes"
)

// Result is the computed detected position and block, before any blur is
// applied.
type Result struct {
	Position mgl64.Vec3
	Block    photon.Index
	HasBlock bool
}

// Compute selects the dominant interaction set and returns its energy-
// weighted centroid. Block detectors group interactions by (ring,block) and
// use the set with the greatest deposited energy; other shapes use every
// active interaction at once.
func Compute(p *photon.Photon, isBlockDetector bool) (Result, bool) {
	if !isBlockDetector {
		return centroidOf(p, func(photon.Index) bool { return true })
	}

	type key struct{ ring, block int }
	totals := make(map[key]float64)
	for i := 0; i < p.NumInteraction; i++ {
		in := p.Interactions[i]
		if !in.Active {
			continue
		}
		k := key{in.Where.Ring, in.Where.Block}
		totals[k] += in.EnergyDeposited
	}
	if len(totals) == 0 {
		return Result{}, false
	}
	var dominant key
	best := -1.0
	for k, e := range totals {
		if e > best {
			best = e
			dominant = k
		}
	}
	res, ok := centroidOf(p, func(w photon.Index) bool {
		return w.Ring == dominant.ring && w.Block == dominant.block
	})
	if ok {
		res.Block = photon.Index{Ring: dominant.ring, Block: dominant.block}
		res.HasBlock = true
	}
	return res, ok
}

func centroidOf(p *photon.Photon, include func(photon.Index) bool) (Result, bool) {
	var sumW, x, y, z float64
	for i := 0; i < p.NumInteraction; i++ {
		in := p.Interactions[i]
		if !in.Active || !include(in.Where) {
			continue
		}
		w := in.EnergyDeposited
		sumW += w
		x += w * in.Position.X()
		y += w * in.Position.Y()
		z += w * in.Position.Z()
	}
	if sumW <= 0 {
		return Result{}, false
	}
	return Result{Position: mgl64.Vec3{x / sumW, y / sumW, z / sumW}}, true
}

// SnapToNearestElement replaces res.Position with the geometric center of
// the active element (searching the centroid's own layer, then the closest
// active layers in +x and -x) closest to the centroid, measured in block-local
// coordinates and converted back to tomograph coordinates, and records its
// element index.
func SnapToNearestElement(db *blockdb.DB, res *Result, posLocal mgl64.Vec3) {
	if !res.HasBlock {
		return
	}
	block, _ := db.Block(res.Block.Ring, res.Block.Block)

	type candidate struct {
		layer, elem int
		center      mgl64.Vec3
		dist        float64
	}
	var best *candidate

	order := layerSearchOrder(block, posLocal.X())
	for _, li := range order {
		layer := block.Layers[li]
		for yi := 0; yi < layer.NumY(); yi++ {
			for zi := 0; zi < layer.NumZ(); zi++ {
				elem := layer.ElementAt(yi, zi)
				if !elem.Active {
					continue
				}
				center := elementCenter(block, layer, yi, zi)
				d := center.Sub(posLocal).Len()
				if best == nil || d < best.dist {
					best = &candidate{li, zi*layer.NumY() + yi, center, d}
				}
			}
		}
		if best != nil {
			break
		}
	}
	if best == nil {
		return
	}
	res.Position = db.BlockToTomo(res.Block.Ring, res.Block.Block, best.center)
	res.Block.Layer = best.layer
	res.Block.Element = best.elem
}

// layerSearchOrder returns layer indices ordered by how close their x-span
// is to x, centroid's own layer first.
func layerSearchOrder(block shapes.Block, x float64) []int {
	home := 0
	for i, l := range block.Layers {
		if x >= l.InnerX && x < l.OuterX {
			home = i
			break
		}
	}
	order := []int{home}
	for d := 1; d < len(block.Layers); d++ {
		if home-d >= 0 {
			order = append(order, home-d)
		}
		if home+d < len(block.Layers) {
			order = append(order, home+d)
		}
	}
	return order
}

func elementCenter(block shapes.Block, layer shapes.BlockLayer, yIdx, zIdx int) mgl64.Vec3 {
	x := (layer.InnerX + layer.OuterX) / 2
	yLo, yHi := partitionBounds(layer.YChanges, yIdx, block.YMin, block.YMax)
	zLo, zHi := partitionBounds(layer.ZChanges, zIdx, block.ZMin, block.ZMax)
	return mgl64.Vec3{x, (yLo + yHi) / 2, (zLo + zHi) / 2}
}

// partitionBounds returns the [lo,hi) span of cell idx given ascending
// partition boundaries; the outermost cells extend to the block's own
// bounding-box faces boxMin and boxMax.
func partitionBounds(changes []float64, idx int, boxMin, boxMax float64) (lo, hi float64) {
	lo = boxMin
	if idx > 0 {
		lo = changes[idx-1]
	}
	hi = boxMax
	if idx < len(changes) {
		hi = changes[idx]
	}
	return
}

// BlurEnergy applies Gaussian energy blur with sigma derived from a
// configured FWHM percentage referenced to refEnergyKeV.
func BlurEnergy(energyKeV, fwhmPct, refEnergyKeV float64, src rng.Source, gauss func(rng.Source) float64) float64 {
	if fwhmPct <= 0 {
		return energyKeV
	}
	sigma := fwhmPct * math.Sqrt(energyKeV*refEnergyKeV) / detconst.GaussMagic
	return energyKeV + sigma*gauss(src)
}

// BlurTravelDistance applies the same FWHM-to-sigma conversion to a
// time-of-flight proxy expressed as a distance (time * c).
func BlurTravelDistance(distanceCm, timeFwhmNs float64, speedOfLightCmPerNs float64, src rng.Source, gauss func(rng.Source) float64) float64 {
	if timeFwhmNs <= 0 {
		return distanceCm
	}
	sigma := timeFwhmNs * speedOfLightCmPerNs / detconst.GaussMagic
	return distanceCm + sigma*gauss(src)
}
