// Package emission defines the producer contract the detector core consumes
// decay events from: a source of photon.Photon pairs (or singles), external
// to the tracking/scatter pipeline.
package emission

import "github.com/simset/detcore/internal/photon"

// Producer yields photons for the detector core to track, one at a time.
// Next returns ok=false once the run is exhausted.
type Producer interface {
	Next() (photon.Photon, bool)
}

// Slice is a Producer backed by a fixed, pre-generated photon list, useful
// for tests and for replaying a recorded decay stream.
type Slice struct {
	Photons []photon.Photon
	pos     int
}

// NewSlice returns a Producer over photons, in order.
func NewSlice(photons []photon.Photon) *Slice {
	return &Slice{Photons: photons}
}

func (s *Slice) Next() (photon.Photon, bool) {
	if s.pos >= len(s.Photons) {
		return photon.Photon{}, false
	}
	p := s.Photons[s.pos]
	s.pos++
	return p, true
}
