package scatter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
)

type fixedXsect struct {
	pScat, pComptonGivenScat float64
	comptonEnergy            float64
}

func (f fixedXsect) Attenuation(material int, energyKeV float64) float64          { return 0 }
func (f fixedXsect) PScatter(material int, energyKeV float64) float64             { return f.pScat }
func (f fixedXsect) PComptonGivenScatter(material int, energyKeV float64) float64 { return f.pComptonGivenScat }
func (f fixedXsect) DoCompton(p *photon.Photon, src rng.Source)                   { p.Energy = f.comptonEnergy }
func (f fixedXsect) DoCoherent(p *photon.Photon, material int, src rng.Source)    {}

type fixedSource struct{ u float64 }

func (s fixedSource) Uniform() float64     { return s.u }
func (s fixedSource) Exponential() float64 { return 1 }

func newPhoton(energy float64) *photon.Photon {
	p := photon.New([16]byte{}, 1, photon.Blue, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, energy, 1.0)
	return &p
}

func TestInteractAbsorbsWhenUAboveScatterProbability(t *testing.T) {
	e := NewEngine(fixedXsect{pScat: 0.3, pComptonGivenScat: 0.5})
	p := newPhoton(500)
	out := e.Interact(p, 1, fixedSource{u: 0.9})
	assert.Equal(t, Absorbed, out)
	assert.Equal(t, 0.0, p.Energy)
}

func TestInteractComptonScatters(t *testing.T) {
	e := NewEngine(fixedXsect{pScat: 0.8, pComptonGivenScat: 0.9, comptonEnergy: 300})
	p := newPhoton(500)
	out := e.Interact(p, 1, fixedSource{u: 0.1})
	assert.Equal(t, Compton, out)
	assert.Equal(t, 300.0, p.Energy)
}

func TestInteractForcesAbsorptionBelowMinimumEnergy(t *testing.T) {
	e := NewEngine(fixedXsect{pScat: 0.8, pComptonGivenScat: 0.9, comptonEnergy: 0.5})
	p := newPhoton(500)
	out := e.Interact(p, 1, fixedSource{u: 0.1})
	assert.Equal(t, Absorbed, out)
	assert.Equal(t, 1, e.ForcedAbsorbed)
}

func TestInteractCoherentSuppressedWhenDisabled(t *testing.T) {
	e := NewEngine(fixedXsect{pScat: 0.8, pComptonGivenScat: 0.1})
	e.CoherentEnabled = false
	p := newPhoton(500)
	out := e.Interact(p, 1, fixedSource{u: 0.7})
	assert.Equal(t, CoherentSuppressed, out)
}
