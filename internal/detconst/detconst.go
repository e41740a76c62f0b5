// Package detconst collects the epsilon tolerances and magic numbers that
// the detector core leans on throughout geometry and tracking. Keeping them
// in one place documents intent in a codebase that otherwise sprinkles
// "1e-10" and friends through a dozen files.
package detconst

const (
	// GeomEps is the tolerance used by Geom2D to treat a signed distance or
	// cross product as exactly zero (boundary).
	GeomEps = 1e-10

	// ElementEps is the per-edge tolerance used when locating a position
	// within a block's element grid (IntraBlock.getElementIndex).
	ElementEps = 1e-12

	// WalkStop is the remaining-distance threshold below which IntraBlock's
	// free-path walk is considered finished.
	WalkStop = 1e-7

	// BoundaryNudge is the distance IntraBlock advances a photon past an
	// element-face crossing to push it unambiguously into the next element.
	BoundaryNudge = 1e-9

	// MinDetectableEnergyKeV is the default minimum energy below which a
	// post-scatter photon is forced to absorb (ScatterEngine).
	MinDetectableEnergyKeV = 1.0

	// GaussMagic is the FWHM-to-sigma conversion constant used by Centroid's
	// energy and time blur: 2*sqrt(2*ln(2)) expressed as a percent-FWHM
	// normalizer.
	GaussMagic = 235.4820045

	// LongSegment is an arbitrary "longer than any real detector" sentinel
	// distance (cm) used when a ray needs to be walked to the edge of the
	// universe before intersecting anything bounded.
	LongSegment = 1.0e6

	// MaxZonesCap bounds the zone-partitioning refinement in BlockDB: the
	// algorithm stops doubling the zone count once it would exceed this many
	// zones per ring, even if a zone still holds more than BlocksPerZoneCap
	// blocks.
	MaxZonesCap = 300

	// BlocksPerZoneCap is the maximum number of blocks a zone may reference
	// before BlockDB bisects every zone in the ring.
	BlocksPerZoneCap = 15

	// InitialZoneCount is the starting number of angular zones (quadrants)
	// before any bisection.
	InitialZoneCount = 4
)
