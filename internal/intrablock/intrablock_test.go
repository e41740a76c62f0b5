package intrablock

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simset/detcore/internal/photon"
	"github.com/simset/detcore/internal/rng"
	"github.com/simset/detcore/internal/shapes"
)

// onlyAttenuation is a minimal xsect.CrossSections stand-in; this package
// never calls the scatter-kernel methods, so they're trivial stubs.
type onlyAttenuation struct{ mu map[shapes.Material]float64 }

func (o onlyAttenuation) Attenuation(material int, energyKeV float64) float64 {
	return o.mu[shapes.Material(material)]
}
func (o onlyAttenuation) PScatter(material int, energyKeV float64) float64             { return 0 }
func (o onlyAttenuation) PComptonGivenScatter(material int, energyKeV float64) float64 { return 0 }
func (o onlyAttenuation) DoCompton(p *photon.Photon, src rng.Source)                   {}
func (o onlyAttenuation) DoCoherent(p *photon.Photon, material int, src rng.Source)    {}

func singleElementBlock(mat shapes.Material, active bool) *shapes.Block {
	return &shapes.Block{
		XMin: -1, XMax: 1, YMin: -1, YMax: 1, ZMin: -1, ZMax: 1,
		Layers: []shapes.BlockLayer{
			{InnerX: -1, OuterX: 1, Elements: []shapes.Element{{Material: mat, Active: active}}},
		},
	}
}

func gridBlock() *shapes.Block {
	return &shapes.Block{
		XMin: 0, XMax: 2, YMin: 0, YMax: 2, ZMin: 0, ZMax: 1,
		Layers: []shapes.BlockLayer{
			{
				InnerX: 0, OuterX: 1,
				YChanges: []float64{1},
				ZChanges: []float64{},
				Elements: []shapes.Element{
					{Material: 1, Active: true},
					{Material: 2, Active: false},
				},
			},
			{
				InnerX: 1, OuterX: 2,
				YChanges: []float64{1},
				ZChanges: []float64{},
				Elements: []shapes.Element{
					{Material: 3, Active: true},
					{Material: 4, Active: false},
				},
			},
		},
	}
}

func TestFreePathsSingleElement(t *testing.T) {
	block := singleElementBlock(1, true)
	xs := onlyAttenuation{mu: map[shapes.Material]float64{1: 0.5}}
	fp := FreePaths(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, block, 0.8, 100, xs)
	assert.InDelta(t, 0.4, fp, 1e-9)
}

func TestFreePathsMultiElementCrossesLayers(t *testing.T) {
	block := gridBlock()
	xs := onlyAttenuation{mu: map[shapes.Material]float64{1: 1.0, 3: 2.0}}
	fp := FreePaths(mgl64.Vec3{0, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, block, 2.0, 100, xs)
	// 1 cm through material 1 (mu=1) then 1 cm through material 3 (mu=2).
	assert.InDelta(t, 3.0, fp, 1e-6)
}

func TestDistanceStopsAtInteraction(t *testing.T) {
	block := singleElementBlock(1, true)
	xs := onlyAttenuation{mu: map[shapes.Material]float64{1: 1.0}}
	res := Distance(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, block, 0.5, 10, 100, xs)
	require.False(t, res.Exited)
	assert.InDelta(t, 0.5, res.TravelDistance, 1e-9)
	assert.InDelta(t, 0.5, res.FreePathsUsed, 1e-9)
	assert.True(t, res.WasActive)
}

func TestDistanceExitsBoundingBox(t *testing.T) {
	block := singleElementBlock(1, true)
	xs := onlyAttenuation{mu: map[shapes.Material]float64{1: 0.01}}
	res := Distance(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, block, 100, 10, 100, xs)
	assert.True(t, res.Exited)
}

func TestGetElementIndexBoundaryTolerance(t *testing.T) {
	block := gridBlock()
	_, idx, ok := getElementIndex(mgl64.Vec3{0.5, 1.0, 0}, block)
	require.True(t, ok)
	assert.Equal(t, 1, idx) // y=1.0 is not < 1 (the boundary), so it falls in the second y-cell.
}
