// Command detsim runs a photon stream from a parameter deck through the
// detector core and writes the resulting history-file records to an output
// stream: paramdeck -> shapes -> detdriver.Driver -> binner.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/simset/detcore/internal/applog"
	"github.com/simset/detcore/internal/binner"
	"github.com/simset/detcore/internal/collimator"
	"github.com/simset/detcore/internal/detdriver"
	"github.com/simset/detcore/internal/emission"
	"github.com/simset/detcore/internal/paramdeck"
	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/scatter"
	"github.com/simset/detcore/internal/xsect"
)

func main() {
	deckPath := flag.String("deck", "", "path to the run's parameter deck")
	outPath := flag.String("out", "", "path to the output history-file stream")
	seed := flag.Int64("seed", 1, "random stream seed")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := applog.New("detsim", *debug)

	if err := run(*deckPath, *outPath, *seed, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(deckPath, outPath string, seed int64, log applog.Logger) error {
	if deckPath == "" {
		return fmt.Errorf("detsim: -deck is required")
	}
	deck, err := paramdeck.Load(deckPath)
	if err != nil {
		return err
	}

	xs, err := buildCrossSections(deck)
	if err != nil {
		return err
	}

	tracker, err := buildTracker(deck, xs)
	if err != nil {
		return err
	}

	engine := scatter.NewEngine(xs)
	if min, err := deck.GetFloat("MinDetectableEnergyKeV"); err == nil {
		engine.MinEnergyKeV = min
	}
	engine.CoherentEnabled = deck.GetBoolDefault("CoherentEnabled", true)

	photons, err := buildPhotons(deck)
	if err != nil {
		return err
	}
	producer := emission.NewSlice(photons)

	var sink binner.Sink
	if outPath == "" {
		sink = binner.NewSliceSink()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("detsim: %w", err)
		}
		defer f.Close()
		sink = binner.NewStreamWriter(f)
	}

	driver := &detdriver.Driver{
		Tracker: tracker,
		Scatter: engine,
		Sink:    sink,
		Config: detdriver.Config{
			ForcedInteraction:   deck.GetBoolDefault("ForcedInteraction", false),
			MaxInteractions:     deck.GetIntDefault("MaxInteractions", 64),
			EnergyFWHMPct:       deck.GetFloatDefault("EnergyFWHMPct", 0),
			ReferenceEnergyKeV:  deck.GetFloatDefault("ReferenceEnergyKeV", 0),
			TimeFWHMNs:          deck.GetFloatDefault("TimeFWHMNs", 0),
			SpeedOfLightCmPerNs: deck.GetFloatDefault("SpeedOfLightCmPerNs", 29.9792458),
		},
	}

	src := rng.New(seed)
	for {
		p, ok := producer.Next()
		if !ok {
			break
		}
		if err := driver.Run(&p, src); err != nil {
			return err
		}
	}

	log.Infof("emitted=%d missed=%d discarded=%d absorbed=%d forced_absorptions=%d weight_loss=%.6g",
		driver.Stats.Emitted, driver.Stats.Missed, driver.Stats.Discarded,
		driver.Stats.Absorbed, driver.Stats.ForcedAbsorptions, driver.Stats.ForcedInteractionWeightLoss)
	return nil
}

// buildCrossSections reads one or more "Material" blocks, each naming an
// index and three energy/value tables (Attenuation, PScatter,
// PComptonGivenScatter).
func buildCrossSections(deck *paramdeck.Deck) (*xsect.TableCrossSections, error) {
	xs := xsect.NewTableCrossSections()
	for _, m := range deck.BlockList("Material") {
		idx, err := m.GetInt("Index")
		if err != nil {
			return nil, fmt.Errorf("detsim: material block missing Index: %w", err)
		}
		tbl := xsect.MaterialTable{}
		if sub, ok := m.Block("Attenuation"); ok {
			pts, err := parseTable(sub)
			if err != nil {
				return nil, fmt.Errorf("detsim: material %d Attenuation: %w", idx, err)
			}
			tbl.Attenuation = pts
		}
		if sub, ok := m.Block("PScatter"); ok {
			pts, err := parseTable(sub)
			if err != nil {
				return nil, fmt.Errorf("detsim: material %d PScatter: %w", idx, err)
			}
			tbl.PScatter = pts
		}
		if sub, ok := m.Block("PComptonGivenScatter"); ok {
			pts, err := parseTable(sub)
			if err != nil {
				return nil, fmt.Errorf("detsim: material %d PComptonGivenScatter: %w", idx, err)
			}
			tbl.PComptonGivenScatter = pts
		}
		xs.Materials[idx] = tbl
	}
	return xs, nil
}

func parseTable(deck *paramdeck.Deck) ([]xsect.EnergyPoint, error) {
	energies := deck.List("Energies")
	values := deck.List("Values")
	if len(energies) != len(values) {
		return nil, fmt.Errorf("Energies and Values lists differ in length")
	}
	pts := make([]xsect.EnergyPoint, len(energies))
	for i := range energies {
		e, err := parseFloat(energies[i])
		if err != nil {
			return nil, err
		}
		v, err := parseFloat(values[i])
		if err != nil {
			return nil, err
		}
		pts[i] = xsect.EnergyPoint{EnergyKeV: e, Value: v}
	}
	return pts, nil
}

func buildPhotons(deck *paramdeck.Deck) ([]photon.Photon, error) {
	var seeds []photonSeed
	for _, pd := range deck.BlockList("Photon") {
		seed, err := parsePhotonSeed(pd)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return toPhotons(uuid.New(), seeds), nil
}

func validateAgainstCollimator(deck *paramdeck.Deck, db collimatorValidator) error {
	cd, ok := deck.Block("Collimator")
	if !ok {
		return nil
	}
	radius, err := cd.GetFloat("OuterRadius")
	if err != nil {
		return err
	}
	minZ, err := cd.GetFloat("MinZ")
	if err != nil {
		return err
	}
	maxZ, err := cd.GetFloat("MaxZ")
	if err != nil {
		return err
	}
	bound := collimator.Cylindrical{Radius: radius, MinZ: minZ, MaxZ: maxZ}
	return db.ValidateAgainstCollimator(bound)
}

// collimatorValidator is satisfied by *blockdb.DB; declared locally to avoid
// an import cycle concern in this file's helper signature.
type collimatorValidator interface {
	ValidateAgainstCollimator(bound collimator.Bound) error
}
