// Package detdriver is the top-level per-photon driver: it projects a
// photon onto a detector, repeatedly advances it through a shape-specific
// Tracker, applies ScatterEngine at each interaction, and on completion runs
// Centroid and emits the result to a binner.Sink.
package detdriver

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simset/detcore/internal/photon"
)

// FatalError reports a runtime invariant violation inside tracking (a
// tracker returning a result the driver's state machine cannot interpret):
// the core has no exception unwinding for these, so a FatalError aborts the
// run rather than silently producing a wrong answer.
type FatalError struct {
	Func    string
	DecayID uint64
	Detail  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("detdriver: %s: decay %d: %s", e.Func, e.DecayID, e.Detail)
}

// Action is the outcome of one Tracker.Step call, unified across the
// shape-specific trackers' own Action enums.
type Action int

const (
	// Interact means the photon reached an interaction point within the
	// supplied free-path budget.
	Interact Action = iota
	// Cross means the photon crossed a layer, ring, zone, or block boundary
	// without using its full free-path budget; the caller should subtract
	// FreePathsUsed from its remaining budget and call Step again.
	Cross
	// Discard means the photon left the detector's sensitive volume.
	Discard
)

// StepResult is one segment of a Tracker walk.
type StepResult struct {
	Action        Action
	Position      mgl64.Vec3
	FreePathsUsed float64
	Material      int
	Active        bool
	Where         photon.Index
}

// Tracker is the shape-specific collaborator Driver drives: project a
// photon onto the detector surface, then repeatedly step it through a
// free-path budget. The constructors in cyl_tracker.go, planar_tracker.go,
// and block_tracker.go create one Tracker per run; Project resets its
// per-photon ring/layer/zone/block state.
type Tracker interface {
	// Project places p on the detector's entry surface, returning false if
	// the ray misses the detector entirely.
	Project(p *photon.Photon) bool

	// Step advances p by the free-path budget fp or the nearest boundary,
	// whichever is smaller, mutating p's location and the tracker's
	// internal ring/layer/zone/block state.
	Step(p *photon.Photon, fp float64) StepResult

	// Clone returns an independent copy of the tracker's current state, for
	// the forced-interaction free-paths-to-exit pre-walk.
	Clone() Tracker

	// IsBlockShape reports whether this tracker is a block detector, so
	// Driver.finish asks Centroid to group interactions by (ring,block).
	IsBlockShape() bool
}
