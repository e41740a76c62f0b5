// Package photon defines the in-flight photon record threaded through the
// detector core: its kinematic state, its interaction list, and the bounds
// that keep that list fixed-capacity (no per-interaction heap allocation in
// the steady state).
package photon

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// MaxDetInteractions bounds the number of interactions recorded for a single
// photon; exceeding it forces an immediate absorption.
const MaxDetInteractions = 64

// Flavor distinguishes the two members of a PET annihilation pair.
type Flavor int

const (
	Blue Flavor = iota
	Pink
)

// Index identifies the detector volume an interaction occurred in, down to
// the material element for block detectors.
type Index struct {
	Ring    int
	Block   int
	Layer   int
	Element int
}

// Interaction is one recorded event in a photon's path through active or
// inactive detector material.
type Interaction struct {
	Position        mgl64.Vec3
	Where           Index
	EnergyDeposited float64
	Active          bool
}

// Photon is the mutable record carried through the detector core for a
// single decay product.
type Photon struct {
	RunID  uuid.UUID
	Decay  uint64
	Flavor Flavor

	Location  mgl64.Vec3
	Direction mgl64.Vec3

	Energy       float64
	Weight       float64
	DecayWeight  float64
	ScatterWeig  float64 // carried through unchanged by the core
	PrimaryWeigh float64 // carried through unchanged by the core

	TravelDistance float64

	Interactions   [MaxDetInteractions]Interaction
	NumInteraction int

	Detected      bool
	DetectedAt    mgl64.Vec3
	DetectedBlock Index
	ViewAngle     float64
}

// New returns a Photon ready to enter the detector core, with weight and
// energy initialized from the emission producer's output.
func New(runID uuid.UUID, decay uint64, flavor Flavor, loc, dir mgl64.Vec3, energy, weight float64) Photon {
	return Photon{
		RunID:       runID,
		Decay:       decay,
		Flavor:      flavor,
		Location:    loc,
		Direction:   dir,
		Energy:      energy,
		Weight:      weight,
		DecayWeight: weight,
	}
}

// AddInteraction appends an interaction to the list, silently dropping it if
// the photon has already recorded MaxDetInteractions (the caller is expected
// to have forced an absorption before this point).
func (p *Photon) AddInteraction(in Interaction) bool {
	if p.NumInteraction >= MaxDetInteractions {
		return false
	}
	p.Interactions[p.NumInteraction] = in
	p.NumInteraction++
	return true
}

// ActiveEnergy returns the sum of EnergyDeposited over active interactions
// recorded so far.
func (p *Photon) ActiveEnergy() float64 {
	var sum float64
	for i := 0; i < p.NumInteraction; i++ {
		if p.Interactions[i].Active {
			sum += p.Interactions[i].EnergyDeposited
		}
	}
	return sum
}

// Absorb zeroes the photon's energy and records a final interaction with the
// remaining energy deposited at the given index/position.
func (p *Photon) Absorb(pos mgl64.Vec3, where Index, active bool) {
	p.AddInteraction(Interaction{
		Position:        pos,
		Where:           where,
		EnergyDeposited: p.Energy,
		Active:          active,
	})
	p.Energy = 0
}
