// Package scatter implements the per-interaction absorb/Compton/coherent
// decision: given a material and the photon's current energy, it queries
// the cross-section service for branching probabilities, draws the
// interaction outcome, and enforces the minimum-detectable-energy forced
// absorption.
package scatter

import (
	"github.com/simset/detcore/internal/detconst"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/xsect"
)

// Outcome is the result of one scatter decision.
type Outcome int

const (
	Absorbed Outcome = iota
	Compton
	Coherent
	// CoherentSuppressed is returned when a coherent scatter was selected but
	// coherent modeling is disabled: the caller should undo the interaction
	// count and redraw the free-path distance.
	CoherentSuppressed
)

// Engine decides and applies photon interactions at an active or inactive
// element/layer.
type Engine struct {
	XSect           xsect.CrossSections
	MinEnergyKeV    float64
	CoherentEnabled bool
	ForcedAbsorbed  int // diagnostic counter tracking scatters rewritten as absorptions
}

// NewEngine returns an Engine with the default minimum detectable energy
// and coherent scattering enabled.
func NewEngine(xs xsect.CrossSections) *Engine {
	return &Engine{XSect: xs, MinEnergyKeV: detconst.MinDetectableEnergyKeV, CoherentEnabled: true}
}

// Interact decides and applies the outcome of an interaction in material at
// p's current energy, mutating p's energy and direction as appropriate.
func (e *Engine) Interact(p *photon.Photon, material int, src rng.Source) Outcome {
	pScat := e.XSect.PScatter(material, p.Energy)
	pComptonGivenScat := e.XSect.PComptonGivenScatter(material, p.Energy)

	u := src.Uniform()
	switch {
	case u > pScat:
		p.Energy = 0
		return Absorbed
	case u <= pScat*pComptonGivenScat:
		e.XSect.DoCompton(p, src)
		return e.applyMinimumEnergy(p, Compton)
	default:
		if !e.CoherentEnabled {
			return CoherentSuppressed
		}
		e.XSect.DoCoherent(p, material, src)
		return Coherent
	}
}

// applyMinimumEnergy forces an absorption if a scatter left the photon below
// MinEnergyKeV, counting it in ForcedAbsorbed.
func (e *Engine) applyMinimumEnergy(p *photon.Photon, outcome Outcome) Outcome {
	if p.Energy < e.MinEnergyKeV {
		p.Energy = 0
		e.ForcedAbsorbed++
		return Absorbed
	}
	return outcome
}
