package xsect

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simset/detcore/internal/photon"
)

type constSource float64

func (s constSource) Uniform() float64     { return float64(s) }
func (s constSource) Exponential() float64 { return -math.Log(1 - float64(s)) }

func tableWith(pts ...EnergyPoint) []EnergyPoint { return pts }

func TestInterpClampsOutsideRange(t *testing.T) {
	xs := NewTableCrossSections()
	xs.Materials[1] = MaterialTable{
		Attenuation: tableWith(
			EnergyPoint{EnergyKeV: 100, Value: 0.1},
			EnergyPoint{EnergyKeV: 500, Value: 0.5},
		),
	}

	assert.InDelta(t, 0.1, xs.Attenuation(1, 50), 1e-12)
	assert.InDelta(t, 0.5, xs.Attenuation(1, 900), 1e-12)
}

func TestInterpLinearBetweenPoints(t *testing.T) {
	xs := NewTableCrossSections()
	xs.Materials[1] = MaterialTable{
		Attenuation: tableWith(
			EnergyPoint{EnergyKeV: 100, Value: 0.1},
			EnergyPoint{EnergyKeV: 300, Value: 0.5},
		),
	}

	assert.InDelta(t, 0.3, xs.Attenuation(1, 200), 1e-12)
}

func TestAttenuationPanicsOnUnknownMaterial(t *testing.T) {
	xs := NewTableCrossSections()
	assert.Panics(t, func() { xs.Attenuation(7, 511) })
}

func TestDoComptonLowersEnergyAndKeepsDirectionUnit(t *testing.T) {
	xs := NewTableCrossSections()
	p := photon.New(uuid.Nil, 1, photon.Blue, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 511, 1)

	src := constSource(0.5)
	xs.DoCompton(&p, src)

	assert.Less(t, p.Energy, 511.0)
	assert.Greater(t, p.Energy, 0.0)
	require.InDelta(t, 1.0, p.Direction.Len(), 1e-9)
}

func TestDoCoherentPreservesEnergy(t *testing.T) {
	xs := NewTableCrossSections()
	p := photon.New(uuid.Nil, 1, photon.Blue, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 140, 1)

	xs.DoCoherent(&p, 1, constSource(0.2))

	assert.InDelta(t, 140, p.Energy, 1e-12)
	assert.InDelta(t, 1.0, p.Direction.Len(), 1e-9)
}
