package forced

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedSource struct{ u float64 }

func (s fixedSource) Uniform() float64     { return 0.5 }
func (s fixedSource) Exponential() float64 { return s.u }

func TestFreePathsToExitSumsSegments(t *testing.T) {
	segments := []float64{0.1, 0.2, 0.3}
	i := 0
	next := func() (float64, bool) {
		fp := segments[i]
		i++
		return fp, i == len(segments)
	}
	total := FreePathsToExit(next)
	assert.InDelta(t, 0.6, total, 1e-9)
}

func TestRescaleWeightMatchesForcedInteractionFormula(t *testing.T) {
	newWeight, decrement := RescaleWeight(1.0, 2.0)
	want := 1 - math.Exp(-2.0)
	assert.InDelta(t, want, newWeight, 1e-12)
	assert.InDelta(t, 1-want, decrement, 1e-12)
}

func TestSampleTruncatedFreePathStaysWithinBound(t *testing.T) {
	fp := SampleTruncatedFreePath(2.0, fixedSource{u: 5.3})
	assert.GreaterOrEqual(t, fp, 0.0)
	assert.LessOrEqual(t, fp, 2.0)
}

func TestSampleTruncatedFreePathClampsOnOvershoot(t *testing.T) {
	fp := SampleTruncatedFreePath(1.0, fixedSource{u: 0.999999999999})
	assert.LessOrEqual(t, fp, 1.0)
}
