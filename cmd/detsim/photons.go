package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/simset/detcore/internal/paramdeck"
	"github.com/simset/detcore/internal/photon"
)

// photonSeed is the deck's plain-data description of one photon to emit,
// before it is stamped with the run's id and turned into a photon.Photon.
type photonSeed struct {
	Location  mgl64.Vec3
	Direction mgl64.Vec3
	Energy    float64
	Weight    float64
	Decay     uint64
	Flavor    photon.Flavor
	ViewAngle float64
}

func parseVec3(deck *paramdeck.Deck, key string) (mgl64.Vec3, error) {
	vals := deck.List(key)
	if len(vals) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("detsim: %s needs 3 components, got %d", key, len(vals))
	}
	x, err := parseFloat(vals[0])
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("detsim: %s: %w", key, err)
	}
	y, err := parseFloat(vals[1])
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("detsim: %s: %w", key, err)
	}
	z, err := parseFloat(vals[2])
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("detsim: %s: %w", key, err)
	}
	return mgl64.Vec3{x, y, z}, nil
}

func parsePhotonSeed(deck *paramdeck.Deck) (photonSeed, error) {
	loc, err := parseVec3(deck, "Location")
	if err != nil {
		return photonSeed{}, err
	}
	dir, err := parseVec3(deck, "Direction")
	if err != nil {
		return photonSeed{}, err
	}
	energy, err := deck.GetFloat("Energy")
	if err != nil {
		return photonSeed{}, fmt.Errorf("detsim: photon block missing Energy: %w", err)
	}

	flavor := photon.Blue
	if s, ok := deck.Get("Flavor"); ok && s == "Pink" {
		flavor = photon.Pink
	}

	return photonSeed{
		Location:  loc,
		Direction: dir,
		Energy:    energy,
		Weight:    deck.GetFloatDefault("Weight", 1.0),
		Decay:     uint64(deck.GetIntDefault("Decay", 0)),
		Flavor:    flavor,
		ViewAngle: deck.GetFloatDefault("ViewAngle", 0),
	}, nil
}

func toPhotons(runID uuid.UUID, seeds []photonSeed) []photon.Photon {
	photons := make([]photon.Photon, len(seeds))
	for i, s := range seeds {
		p := photon.New(runID, s.Decay, s.Flavor, s.Location, s.Direction, s.Energy, s.Weight)
		p.ViewAngle = s.ViewAngle
		photons[i] = p
	}
	return photons
}
