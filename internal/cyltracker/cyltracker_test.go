package cyltracker

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simset/detcore/internal/shapes"
)

func oneRingShape() *shapes.Cylindrical {
	return &shapes.Cylindrical{
		Rings: []shapes.CylindricalRing{
			{
				MinZ: -10, MaxZ: 10,
				Layers: []shapes.RadialLayer{
					{InnerRadius: 5, OuterRadius: 10, Material: 1, Active: true},
				},
			},
		},
	}
}

func constMu(mu float64) MuFunc {
	return func(material shapes.Material, energyKeV float64) float64 { return mu }
}

func TestFindNextInteractionHitsInteractionBeforeBoundary(t *testing.T) {
	shape := oneRingShape()
	state := &State{Ring: 0, Layer: 0}
	pos := mgl64.Vec3{5, 0, 0}
	dir := mgl64.Vec3{1, 0, 0}

	res := FindNextInteraction(shape, state, pos, dir, 0.5, constMu(1.0), 100)
	require.Equal(t, Interact, res.Action)
	assert.InDelta(t, 0.5, res.Distance, 1e-9)
}

func TestFindNextInteractionCrossesLayerOutward(t *testing.T) {
	shape := oneRingShape()
	shape.Rings[0].Layers = append(shape.Rings[0].Layers, shapes.RadialLayer{InnerRadius: 10, OuterRadius: 15, Material: 2, Active: false})
	state := &State{Ring: 0, Layer: 0}
	pos := mgl64.Vec3{5, 0, 0}
	dir := mgl64.Vec3{1, 0, 0}

	res := FindNextInteraction(shape, state, pos, dir, 100, constMu(0.001), 100)
	require.Equal(t, LayerCross, res.Action)
	assert.Equal(t, 1, state.Layer)
	assert.InDelta(t, 5.0, res.Distance, 1e-9)
}

func TestFindNextInteractionDiscardsAtOutermostLayer(t *testing.T) {
	shape := oneRingShape()
	state := &State{Ring: 0, Layer: 0}
	pos := mgl64.Vec3{5, 0, 0}
	dir := mgl64.Vec3{1, 0, 0}

	res := FindNextInteraction(shape, state, pos, dir, 1000, constMu(0.0001), 100)
	assert.Equal(t, Discard, res.Action)
}
