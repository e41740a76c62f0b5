// Package forced implements the forced-first-interaction variance
// reduction technique: computing the total free-paths to exit the detector
// along a photon's ray, rescaling its weight so it is guaranteed to
// interact, and sampling a truncated free-path distance.
package forced

import (
	"math"

	"github.com/simset/detcore/internal/rng"
)

// Segmenter walks the same shape-specific tracker the real interaction loop
// uses, but without consuming free paths: each call advances one segment
// and reports the free paths (mu * distance) accumulated over it, and
// whether the walk has exited the detector.
type Segmenter func() (segmentFreePaths float64, exited bool)

// maxSegments bounds the walk so a misbehaving Segmenter cannot loop
// forever; any real detector geometry exits in far fewer steps.
const maxSegments = 100000

// FreePathsToExit sums segmentFreePaths over every segment returned by next
// until it reports exited, returning the total optical path to the
// detector's far boundary.
func FreePathsToExit(next Segmenter) float64 {
	var total float64
	for i := 0; i < maxSegments; i++ {
		fp, exited := next()
		total += fp
		if exited {
			break
		}
	}
	return total
}

// RescaleWeight scales weight by (1 - exp(-fpExit)) for the forced-
// interaction guarantee, returning the new weight and the amount it
// decreased by (accumulated into a diagnostic counter by the caller).
func RescaleWeight(weight, fpExit float64) (newWeight, decrement float64) {
	factor := 1 - math.Exp(-fpExit)
	newWeight = weight * factor
	return newWeight, weight - newWeight
}

// SampleTruncatedFreePath draws u ~ Exp(1) and folds it into [0, fpExit) via
// fp = (u/fpExit - floor(u/fpExit)) * fpExit, clamping to fpExit on
// roundoff overshoot.
func SampleTruncatedFreePath(fpExit float64, src rng.Source) float64 {
	u := src.Exponential()
	ratio := u / fpExit
	fp := (ratio - math.Floor(ratio)) * fpExit
	if fp > fpExit {
		fp = fpExit
	}
	return fp
}
