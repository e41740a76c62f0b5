package main

import (
	"fmt"
	"strconv"

	"github.com/simset/detcore/internal/blockdb"
	"github.com/simset/detcore/internal/detdriver"
	"github.com/simset/detcore/internal/paramdeck"
	"github.com/simset/detcore/internal/shapes"
	"github.com/simset/detcore/internal/xsect"
)

// buildTracker reads the "DetectorType" key and the matching geometry
// block, returning the detdriver.Tracker for the run.
func buildTracker(deck *paramdeck.Deck, xs xsect.CrossSections) (detdriver.Tracker, error) {
	kind, ok := deck.Get("DetectorType")
	if !ok {
		return nil, fmt.Errorf("detsim: deck has no DetectorType")
	}

	switch kind {
	case "Cylindrical":
		gd, ok := deck.Block("Cylindrical")
		if !ok {
			return nil, fmt.Errorf("detsim: DetectorType Cylindrical but no Cylindrical block")
		}
		shape, err := buildCylindrical(gd)
		if err != nil {
			return nil, err
		}
		return detdriver.NewCylTracker(shape, xs), nil

	case "Planar":
		gd, ok := deck.Block("Planar")
		if !ok {
			return nil, fmt.Errorf("detsim: DetectorType Planar but no Planar block")
		}
		shape, err := buildPlanar(gd)
		if err != nil {
			return nil, err
		}
		return detdriver.NewPlanarTracker(shape, xs), nil

	case "Block":
		gd, ok := deck.Block("Block")
		if !ok {
			return nil, fmt.Errorf("detsim: DetectorType Block but no Block block")
		}
		shape, err := buildBlockDetector(gd)
		if err != nil {
			return nil, err
		}
		db, err := blockdb.Build(shape)
		if err != nil {
			return nil, err
		}
		if err := validateAgainstCollimator(deck, db); err != nil {
			return nil, err
		}
		return detdriver.NewBlockTracker(db, xs), nil

	default:
		return nil, fmt.Errorf("detsim: unknown DetectorType %q", kind)
	}
}

func buildCylindrical(deck *paramdeck.Deck) (*shapes.Cylindrical, error) {
	shape := &shapes.Cylindrical{}
	for _, rd := range deck.BlockList("Ring") {
		ring := shapes.CylindricalRing{
			MinZ:       rd.GetFloatDefault("MinZ", 0),
			MaxZ:       rd.GetFloatDefault("MaxZ", 0),
			AxialShift: rd.GetFloatDefault("AxialShift", 0),
		}
		for _, ld := range rd.BlockList("Layer") {
			mat, err := ld.GetInt("Material")
			if err != nil {
				return nil, fmt.Errorf("detsim: cylindrical layer: %w", err)
			}
			ring.Layers = append(ring.Layers, shapes.RadialLayer{
				InnerRadius: ld.GetFloatDefault("InnerRadius", 0),
				OuterRadius: ld.GetFloatDefault("OuterRadius", 0),
				Material:    shapes.Material(mat),
				Active:      ld.GetBoolDefault("Active", true),
			})
		}
		shape.Rings = append(shape.Rings, ring)
	}
	return shape, nil
}

func buildPlanar(deck *paramdeck.Deck) (*shapes.Planar, error) {
	shape := &shapes.Planar{
		InnerRadius:      deck.GetFloatDefault("InnerRadius", 0),
		AxialLength:      deck.GetFloatDefault("AxialLength", 0),
		TransaxialLength: deck.GetFloatDefault("TransaxialLength", 0),
		NumViews:         deck.GetIntDefault("NumViews", 1),
		MinAngleDeg:      deck.GetFloatDefault("MinAngleDeg", 0),
		MaxAngleDeg:      deck.GetFloatDefault("MaxAngleDeg", 0),
		DualHeaded:       deck.GetBoolDefault("DualHeaded", false),
	}
	for _, ld := range deck.BlockList("Layer") {
		mat, err := ld.GetInt("Material")
		if err != nil {
			return nil, fmt.Errorf("detsim: planar layer: %w", err)
		}
		shape.Layers = append(shape.Layers, shapes.PlanarLayer{
			Depth:    ld.GetFloatDefault("Depth", 0),
			Material: shapes.Material(mat),
			Active:   ld.GetBoolDefault("Active", true),
		})
	}
	return shape, nil
}

// buildBlockDetector supports the common case of one element per block
// layer (no intra-layer y/z subdivision); a deck needing a subdivided grid
// constructs shapes.BlockDetector directly rather than through detsim.
func buildBlockDetector(deck *paramdeck.Deck) (*shapes.BlockDetector, error) {
	shape := &shapes.BlockDetector{}
	for _, rd := range deck.BlockList("Ring") {
		ring := shapes.BlockRing{
			AxialShift: rd.GetFloatDefault("AxialShift", 0),
			Rotation:   rd.GetFloatDefault("Rotation", 0),
			InnerXRad:  rd.GetFloatDefault("InnerXRad", 0),
			OuterXRad:  rd.GetFloatDefault("OuterXRad", 0),
			InnerYRad:  rd.GetFloatDefault("InnerYRad", 0),
			OuterYRad:  rd.GetFloatDefault("OuterYRad", 0),
			MinZ:       rd.GetFloatDefault("MinZ", 0),
			MaxZ:       rd.GetFloatDefault("MaxZ", 0),
		}
		for _, bd := range rd.BlockList("Block") {
			block := shapes.Block{
				XMin: bd.GetFloatDefault("XMin", 0), XMax: bd.GetFloatDefault("XMax", 0),
				YMin: bd.GetFloatDefault("YMin", 0), YMax: bd.GetFloatDefault("YMax", 0),
				ZMin: bd.GetFloatDefault("ZMin", 0), ZMax: bd.GetFloatDefault("ZMax", 0),
				Radius:      bd.GetFloatDefault("Radius", 0),
				AngleRad:    bd.GetFloatDefault("AngleRad", 0),
				Z:           bd.GetFloatDefault("Z", 0),
				Orientation: bd.GetFloatDefault("Orientation", 0),
			}
			for _, ld := range bd.BlockList("Layer") {
				mat, err := ld.GetInt("Material")
				if err != nil {
					return nil, fmt.Errorf("detsim: block layer: %w", err)
				}
				block.Layers = append(block.Layers, shapes.BlockLayer{
					InnerX: ld.GetFloatDefault("InnerX", 0),
					OuterX: ld.GetFloatDefault("OuterX", 0),
					Elements: []shapes.Element{{
						Material: shapes.Material(mat),
						Active:   ld.GetBoolDefault("Active", true),
					}},
				})
			}
			ring.Blocks = append(ring.Blocks, block)
		}
		shape.Rings = append(shape.Rings, ring)
	}
	return shape, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("detsim: %q is not a number: %w", s, err)
	}
	return f, nil
}
