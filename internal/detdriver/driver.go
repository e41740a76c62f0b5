package detdriver

import (
	"math"

	"github.com/simset/detcore/internal/binner"
	"github.com/simset/detcore/internal/centroid"
	"github.com/simset/detcore/internal/forced"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/scatter"
)

// Config bundles the run-wide options Driver needs beyond the tracker and
// scatter engine.
type Config struct {
	ForcedInteraction   bool
	MaxInteractions     int
	EnergyFWHMPct       float64
	ReferenceEnergyKeV  float64
	TimeFWHMNs          float64
	SpeedOfLightCmPerNs float64
}

// Stats accumulates per-run counters; merge per-worker instances if
// parallelizing over photons.
type Stats struct {
	Emitted                     int
	Missed                      int
	Discarded                   int
	Absorbed                    int
	ForcedAbsorptions           int
	ForcedInteractionWeightLoss float64
}

// Driver runs the per-photon pipeline against one Tracker.
type Driver struct {
	Tracker Tracker
	Scatter *scatter.Engine
	Sink    binner.Sink
	Config  Config
	Stats   Stats
	RunSeq  uint64
}

// Run executes the per-photon state machine: Projecting -> Tracking ->
// {Interacting -> Tracking | Discarded | Absorbed} -> {Detected | Lost}.
func (d *Driver) Run(p *photon.Photon, src rng.Source) error {
	if pt, isPlanar := d.Tracker.(*PlanarTracker); isPlanar {
		pt.AssignViewAngle(p, src)
	}

	if !d.Tracker.Project(p) {
		d.Stats.Missed++
		return nil
	}

	var fp float64
	if d.Config.ForcedInteraction {
		fpExit := freePathsToExit(d.Tracker, p)
		newWeight, decrement := forced.RescaleWeight(p.Weight, fpExit)
		p.Weight = newWeight
		d.Stats.ForcedInteractionWeightLoss += decrement
		fp = forced.SampleTruncatedFreePath(fpExit, src)
	} else {
		fp = src.Exponential()
	}

	for p.NumInteraction < d.Config.MaxInteractions {
		res := d.Tracker.Step(p, fp)

		switch res.Action {
		case Cross:
			fp -= res.FreePathsUsed
			continue

		case Discard:
			d.Stats.Discarded++
			return nil

		case Interact:
			before := p.Energy
			outcome := d.Scatter.Interact(p, res.Material, src)

			switch outcome {
			case scatter.CoherentSuppressed:
				// Treated as if the interaction never happened: no energy
				// or direction change, no recorded interaction.
				fp = src.Exponential()
				continue

			case scatter.Absorbed:
				p.AddInteraction(photon.Interaction{
					Position:        res.Position,
					Where:           res.Where,
					EnergyDeposited: before,
					Active:          res.Active,
				})
				d.Stats.Absorbed++
				return d.finish(p, src)

			default: // Compton or Coherent: the photon is still in flight
				p.AddInteraction(photon.Interaction{
					Position:        res.Position,
					Where:           res.Where,
					EnergyDeposited: before - p.Energy,
					Active:          res.Active,
				})
				fp = src.Exponential()
				continue
			}

		default:
			return &FatalError{Func: "Driver.Run", DecayID: p.Decay, Detail: "tracker returned an unknown step action"}
		}
	}

	// MaxInteractions reached without absorbing or discarding: force the
	// remainder down in place.
	p.AddInteraction(photon.Interaction{
		Position:        p.Location,
		EnergyDeposited: p.Energy,
		Active:          false,
	})
	p.Energy = 0
	d.Stats.Absorbed++
	return d.finish(p, src)
}

// freePathsToExit walks a throwaway clone of p through a cloned tracker with
// an unbounded free-path budget, summing the optical path to the detector's
// far boundary, for the forced-interaction weight rescale.
func freePathsToExit(tr Tracker, p *photon.Photon) float64 {
	clone := *p
	walker := tr.Clone()

	return forced.FreePathsToExit(func() (segmentFreePaths float64, exited bool) {
		res := walker.Step(&clone, math.MaxFloat64)
		return res.FreePathsUsed, res.Action != Cross
	})
}

func (d *Driver) finish(p *photon.Photon, src rng.Source) error {
	d.Stats.ForcedAbsorptions = d.Scatter.ForcedAbsorbed

	res, ok := centroid.Compute(p, d.Tracker.IsBlockShape())
	if !ok {
		return nil
	}

	if bt, isBlock := d.Tracker.(*BlockTracker); isBlock && res.HasBlock {
		posLocal := bt.DB.TomoToBlock(res.Block.Ring, res.Block.Block, res.Position)
		centroid.SnapToNearestElement(bt.DB, &res, posLocal)
	}

	if pt, isPlanar := d.Tracker.(*PlanarTracker); isPlanar {
		res.Position = pt.ToTomograph(res.Position, p.ViewAngle)
	}

	p.Detected = true
	p.DetectedAt = res.Position
	p.DetectedBlock = res.Block

	energy := p.ActiveEnergy()
	if d.Config.EnergyFWHMPct > 0 {
		energy = centroid.BlurEnergy(energy, d.Config.EnergyFWHMPct, d.Config.ReferenceEnergyKeV, src, rng.StdNormal)
	}
	travelDistance := p.TravelDistance
	if d.Config.TimeFWHMNs > 0 {
		travelDistance = centroid.BlurTravelDistance(travelDistance, d.Config.TimeFWHMNs, d.Config.SpeedOfLightCmPerNs, src, rng.StdNormal)
	}

	d.RunSeq++
	d.Stats.Emitted++
	return d.Sink.Emit(binner.Record{
		RunSeq:         d.RunSeq,
		DecayID:        p.Decay,
		Flavor:         p.Flavor,
		DetectedAt:     [3]float64{p.DetectedAt.X(), p.DetectedAt.Y(), p.DetectedAt.Z()},
		DetectedBlock:  p.DetectedBlock,
		EnergyKeV:      energy,
		TravelDistance: travelDistance,
		Weight:         p.Weight,
		DecayWeight:    p.DecayWeight,
		Interactions:   append([]photon.Interaction(nil), p.Interactions[:p.NumInteraction]...),
		FromBlockShape: d.Tracker.IsBlockShape(),
	})
}
