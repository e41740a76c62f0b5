// Package xsect is the cross-section service: the external collaborator
// that turns (material, energy) into attenuation and scatter-branching
// probabilities, and applies the Compton/coherent kernels. The detector
// core only ever consumes the CrossSections interface; TableCrossSections
// is a reference implementation for tests and for cmd/detsim.
package xsect

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
)

// CrossSections is the external cross-section / scatter-kernel service
// consumed by ScatterEngine and the free-path computations.
type CrossSections interface {
	// Attenuation returns mu (cm^-1) for the given material at energyKeV.
	Attenuation(material int, energyKeV float64) float64

	// PScatter returns the total scatter probability for the given material
	// at energyKeV.
	PScatter(material int, energyKeV float64) float64

	// PComptonGivenScatter returns the Compton share of scatter probability.
	PComptonGivenScatter(material int, energyKeV float64) float64

	// DoCompton updates p's direction and energy for a Compton scatter.
	DoCompton(p *photon.Photon, src rng.Source)

	// DoCoherent updates p's direction for a coherent scatter in the given
	// material; energy is left unchanged.
	DoCoherent(p *photon.Photon, material int, src rng.Source)
}

// EnergyPoint is one (energy, value) sample of a piecewise-linear material
// table.
type EnergyPoint struct {
	EnergyKeV float64
	Value     float64
}

// MaterialTable holds the three energy-dependent curves a material needs:
// attenuation, total scatter probability, and Compton-given-scatter share.
type MaterialTable struct {
	Attenuation          []EnergyPoint
	PScatter             []EnergyPoint
	PComptonGivenScatter []EnergyPoint
}

func interp(points []EnergyPoint, energyKeV float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if energyKeV <= points[0].EnergyKeV {
		return points[0].Value
	}
	last := points[len(points)-1]
	if energyKeV >= last.EnergyKeV {
		return last.Value
	}
	i := sort.Search(len(points), func(i int) bool { return points[i].EnergyKeV >= energyKeV })
	lo, hi := points[i-1], points[i]
	if hi.EnergyKeV == lo.EnergyKeV {
		return lo.Value
	}
	frac := (energyKeV - lo.EnergyKeV) / (hi.EnergyKeV - lo.EnergyKeV)
	return lo.Value + frac*(hi.Value-lo.Value)
}

// TableCrossSections looks up attenuation and scatter probabilities from
// per-material interpolation tables, and applies simple Compton/coherent
// kinematics.
type TableCrossSections struct {
	Materials map[int]MaterialTable
}

// NewTableCrossSections returns an empty table-backed service; callers
// populate Materials directly (as cmd/detsim does from the deck's Material
// blocks).
func NewTableCrossSections() *TableCrossSections {
	return &TableCrossSections{Materials: make(map[int]MaterialTable)}
}

func (t *TableCrossSections) table(material int) MaterialTable {
	tbl, ok := t.Materials[material]
	if !ok {
		panic(fmt.Sprintf("xsect: unknown material index %d", material))
	}
	return tbl
}

func (t *TableCrossSections) Attenuation(material int, energyKeV float64) float64 {
	return interp(t.table(material).Attenuation, energyKeV)
}

func (t *TableCrossSections) PScatter(material int, energyKeV float64) float64 {
	return interp(t.table(material).PScatter, energyKeV)
}

func (t *TableCrossSections) PComptonGivenScatter(material int, energyKeV float64) float64 {
	return interp(t.table(material).PComptonGivenScatter, energyKeV)
}

// electronRestMassKeV is 511 keV, used by the Compton kinematics below.
const electronRestMassKeV = 510.999

// DoCompton samples a scatter angle from the Klein-Nishina differential
// cross-section via rejection sampling, updates the photon's energy via the
// Compton formula, and rotates its direction by the sampled polar angle
// around an arbitrary azimuth.
func (t *TableCrossSections) DoCompton(p *photon.Photon, src rng.Source) {
	alpha := p.Energy / electronRestMassKeV

	var cosTheta float64
	for attempts := 0; attempts < 1000; attempts++ {
		cosTheta = 1 - 2*src.Uniform()
		ratio := 1 / (1 + alpha*(1-cosTheta))
		kn := ratio * ratio * (ratio + 1/ratio - 1 + cosTheta*cosTheta)
		if src.Uniform()*2 <= kn {
			break
		}
	}

	newEnergy := p.Energy / (1 + alpha*(1-cosTheta))
	phi := 2 * math.Pi * src.Uniform()

	p.Direction = rotateAboutAxis(p.Direction, cosTheta, phi)
	p.Energy = newEnergy
}

// DoCoherent scatters elastically: direction changes, energy does not. The
// angular distribution used here is a simple forward-peaked approximation;
// material is accepted for interface symmetry with a real form-factor-based
// kernel.
func (t *TableCrossSections) DoCoherent(p *photon.Photon, material int, src rng.Source) {
	cosTheta := 1 - 2*math.Pow(src.Uniform(), 4)
	phi := 2 * math.Pi * src.Uniform()
	p.Direction = rotateAboutAxis(p.Direction, cosTheta, phi)
}

// rotateAboutAxis rotates dir by polar angle acos(cosTheta) and azimuth phi
// around an orthonormal frame built from dir.
func rotateAboutAxis(dir mgl64.Vec3, cosTheta, phi float64) mgl64.Vec3 {
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	// Build an orthonormal basis (u, v, dir).
	var u mgl64.Vec3
	if math.Abs(dir.X()) < 0.9 {
		u = mgl64.Vec3{1, 0, 0}.Cross(dir)
	} else {
		u = mgl64.Vec3{0, 1, 0}.Cross(dir)
	}
	u = u.Normalize()
	v := dir.Cross(u)

	local := u.Mul(sinTheta * math.Cos(phi)).
		Add(v.Mul(sinTheta * math.Sin(phi))).
		Add(dir.Mul(cosTheta))
	return local.Normalize()
}
