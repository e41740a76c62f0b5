package photon

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewInitializesDecayWeight(t *testing.T) {
	p := New(uuid.Nil, 7, Pink, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 0, 1}, 511, 0.8)

	assert.Equal(t, uint64(7), p.Decay)
	assert.Equal(t, Pink, p.Flavor)
	assert.InDelta(t, 0.8, p.DecayWeight, 1e-12)
	assert.InDelta(t, 511, p.Energy, 1e-12)
}

func TestActiveEnergySumsOnlyActiveInteractions(t *testing.T) {
	p := New(uuid.Nil, 1, Blue, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 511, 1)

	p.AddInteraction(Interaction{EnergyDeposited: 100, Active: true})
	p.AddInteraction(Interaction{EnergyDeposited: 50, Active: false})
	p.AddInteraction(Interaction{EnergyDeposited: 25, Active: true})

	assert.InDelta(t, 125, p.ActiveEnergy(), 1e-12)
}

func TestAddInteractionStopsAtCapacity(t *testing.T) {
	p := New(uuid.Nil, 1, Blue, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 511, 1)
	for i := 0; i < MaxDetInteractions; i++ {
		assert.True(t, p.AddInteraction(Interaction{Active: true}))
	}
	assert.False(t, p.AddInteraction(Interaction{Active: true}))
	assert.Equal(t, MaxDetInteractions, p.NumInteraction)
}

func TestAbsorbDepositsRemainingEnergyAndZeroesIt(t *testing.T) {
	p := New(uuid.Nil, 1, Blue, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 511, 1)
	p.Energy = 150

	p.Absorb(mgl64.Vec3{1, 2, 3}, Index{Ring: 1, Block: 2}, true)

	assert.Equal(t, 0.0, p.Energy)
	assert.Equal(t, 1, p.NumInteraction)
	assert.InDelta(t, 150, p.Interactions[0].EnergyDeposited, 1e-12)
	assert.Equal(t, Index{Ring: 1, Block: 2}, p.Interactions[0].Where)
}
